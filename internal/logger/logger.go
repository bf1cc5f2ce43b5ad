package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// 環境ごとにフォーマットとレベルを切り替える
// localは人が読むテキスト、dev/prodはJSON
func Setup(env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	switch env {
	case EnvLocal:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
		log.SetLevel(logrus.DebugLevel)
	case EnvDev:
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// テスト用。出力を捨てる
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
