package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
)

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetTokenOutput struct {
	Email string `json:"email"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" validate:"notblank"`
	Password string `json:"password" validate:"required,password"`
}

// パスワード再設定（トークンはハッシュだけ保存）
type PasswordResetUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.PasswordResetTokenRepository
	hasher    PasswordHasher
	mailer    Mailer
	idGen     IDGenerator
	clock     Clock
	ttl       time.Duration
	linkBase  string
}

func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	hasher PasswordHasher,
	mailer Mailer,
	idGen IDGenerator,
	clock Clock,
	ttl time.Duration,
	linkBase string,
) *PasswordResetUsecase {
	return &PasswordResetUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		hasher:    hasher,
		mailer:    mailer,
		idGen:     idGen,
		clock:     clock,
		ttl:       ttl,
		linkBase:  linkBase,
	}
}

var errInvalidResetToken = usecase.ValidationError("invalid or expired token")

// 登録の有無にかかわらず成功を返す
func (u *PasswordResetUsecase) RequestReset(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := usecase.Validate(in); err != nil {
		return err
	}

	user, err := u.userRepo.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return usecase.PersistenceError(err)
	}

	//古いトークンは消す
	if err := u.tokenRepo.DeleteAllByUserID(ctx, user.ID); err != nil {
		return usecase.PersistenceError(err)
	}

	plain, err := generateSecureToken(32)
	if err != nil {
		return usecase.PersistenceError(err)
	}

	now := u.clock.Now()
	token := &model.PasswordResetToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashToken(plain),
		ExpiresAt: now.Add(u.ttl),
	}
	if err := u.tokenRepo.Create(ctx, token); err != nil {
		return usecase.PersistenceError(err)
	}

	link := u.linkBase + "?token=" + url.QueryEscape(plain)
	if err := u.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return usecase.PersistenceError(err)
	}
	return nil
}

// トークンが使えるか確認し、対象のemailを返す
func (u *PasswordResetUsecase) Verify(ctx context.Context, plain string) (VerifyResetTokenOutput, error) {
	t, err := u.usableToken(ctx, plain)
	if err != nil {
		return VerifyResetTokenOutput{}, err
	}

	user, err := u.userRepo.FindByID(ctx, t.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return VerifyResetTokenOutput{}, errInvalidResetToken
	}
	if err != nil {
		return VerifyResetTokenOutput{}, usecase.PersistenceError(err)
	}
	return VerifyResetTokenOutput{Email: user.Email}, nil
}

// 新しいパスワードを設定。token_versionが上がるので既存のアクセストークンは無効
func (u *PasswordResetUsecase) Reset(ctx context.Context, in ResetPasswordInput) error {
	in.Token = strings.TrimSpace(in.Token)
	if err := usecase.Validate(in); err != nil {
		return err
	}

	t, err := u.usableToken(ctx, in.Token)
	if err != nil {
		return err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return usecase.PersistenceError(err)
	}

	//先に使用済みにする（同じトークンで2回通さない）
	err = u.tokenRepo.MarkUsed(ctx, t.ID, u.clock.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return errInvalidResetToken
	}
	if err != nil {
		return usecase.PersistenceError(err)
	}

	err = u.userRepo.UpdatePassword(ctx, t.UserID, hashed)
	if errors.Is(err, repository.ErrNotFound) {
		return errInvalidResetToken
	}
	if err != nil {
		return usecase.PersistenceError(err)
	}
	return nil
}

func (u *PasswordResetUsecase) usableToken(ctx context.Context, plain string) (*model.PasswordResetToken, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return nil, usecase.ValidationError("token is required")
	}

	t, err := u.tokenRepo.FindByTokenHash(ctx, hashToken(plain))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidResetToken
	}
	if err != nil {
		return nil, usecase.PersistenceError(err)
	}
	if !t.Usable(u.clock.Now()) {
		return nil, errInvalidResetToken
	}
	return t, nil
}

// URLに載せる平文トークン
func generateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
