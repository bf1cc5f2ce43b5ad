package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Env  string `env:"APP_ENV" env-default:"local"` // local/dev/prod
	Port string `env:"PORT" env-default:"8080"`

	Database Database

	JWTSecret      string        `env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"60m"`

	// フロントURL（CORS）
	FEURL string `env:"FE_URL" env-default:"http://localhost:5173"`

	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" env-default:"15m"`
	ResetURLBase  string        `env:"RESET_URL_BASE" env-default:"http://localhost:5173/auth/reset-password"`

	Notify Notify

	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

type Database struct {
	// DATABASE_URL があれば最優先で使う
	URL         string `env:"DATABASE_URL"`
	Host        string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port        int    `env:"POSTGRES_PORT" env-default:"5432"`
	User        string `env:"POSTGRES_USER" env-default:"postgres"`
	Password    string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Name        string `env:"POSTGRES_DB" env-default:"app"`
	SSLMode     string `env:"POSTGRES_SSLMODE" env-default:"disable"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" env-default:"false"`
}

// 管理者向けリアルタイム通知
type Notify struct {
	// 1セッションあたりの送信待ちバッファ
	Buffer       int           `env:"NOTIFY_BUFFER" env-default:"16"`
	PingInterval time.Duration `env:"WS_PING_INTERVAL" env-default:"30s"`
	// 空ならRabbitMQ中継なし（プロセス内のみ）
	RabbitMQURL string `env:"RABBITMQ_URL"`
	Exchange    string `env:"RABBITMQ_EXCHANGE" env-default:"orders.placed"`
}

// gorm(pgx)用のDSN
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// golang-migrate用のURL形式
func (d Database) MigrateURL() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Loadは.env（あれば）と環境変数を読む
func Load() (Config, error) {
	// .envは無くてもよい
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	//必須チェック
	if cfg.Notify.Buffer < 1 {
		return Config{}, fmt.Errorf("NOTIFY_BUFFER must be >= 1")
	}
	if cfg.Notify.PingInterval <= 0 {
		return Config{}, fmt.Errorf("WS_PING_INTERVAL must be positive")
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return cfg, nil
}

// 読めなければpanic
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// migrator用。DB以外の必須項目は見ない
type MigratorConfig struct {
	Database       Database
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

func LoadMigrator() (MigratorConfig, error) {
	_ = godotenv.Load()

	var cfg MigratorConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return MigratorConfig{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}
