package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type passwordResetTokenGormRepository struct {
	db *gorm.DB
}

func NewPasswordResetTokenGormRepository(db *gorm.DB) repo.PasswordResetTokenRepository {
	return &passwordResetTokenGormRepository{db: db}
}

func (r *passwordResetTokenGormRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return mapWriteErr(r.db.WithContext(ctx).Create(token).Error)
}

// ハッシュで1件取得
func (r *passwordResetTokenGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&t).Error
	if err != nil {
		if isNotFound(err) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// 使用済みにする（未使用のものだけ）
func (r *passwordResetTokenGormRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL", tokenID).
		Update("used_at", usedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *passwordResetTokenGormRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.PasswordResetToken{}).Error
}
