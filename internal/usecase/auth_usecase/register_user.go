package auth

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/usecase"
)

// 会員登録の入力
type RegisterUserInput struct {
	UserName string `json:"user_name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User `json:"user"`
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = normalizeEmail(in.Email)
	if err := usecase.Validate(in); err != nil {
		return out, err
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return out, usecase.ConflictError("email already exists")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return out, usecase.PersistenceError(err)
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, usecase.PersistenceError(err)
	}

	user := &model.User{
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hashed,         // ハッシュを保存（平文は保存しない）
		Role:         model.RoleUser, // 初期はuser
		TokenVersion: 0,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		// 同時登録はunique制約で弾かれる
		if errors.Is(err, repository.ErrDuplicate) {
			return out, usecase.ConflictError("email already exists")
		}
		return out, usecase.PersistenceError(err)
	}

	out.User = *user
	return out, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
