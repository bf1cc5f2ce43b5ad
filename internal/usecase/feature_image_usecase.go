package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type FeatureImageRequest struct {
	Image string `json:"image" validate:"required,url"`
}

type FeatureImageUsecase struct {
	tx     repo.TransactionManager
	images repo.FeatureImageRepository
}

func NewFeatureImageUsecase(tx repo.TransactionManager, images repo.FeatureImageRepository) *FeatureImageUsecase {
	return &FeatureImageUsecase{tx: tx, images: images}
}

func (u *FeatureImageUsecase) Add(ctx context.Context, adminUserID int64, req FeatureImageRequest) (model.FeatureImage, error) {
	if adminUserID <= 0 {
		return model.FeatureImage{}, UnauthorizedError()
	}
	req.Image = strings.TrimSpace(req.Image)
	if err := Validate(req); err != nil {
		return model.FeatureImage{}, err
	}

	img, err := u.images.Create(ctx, model.FeatureImage{Image: req.Image})
	if err != nil {
		return model.FeatureImage{}, PersistenceError(err)
	}
	return img, nil
}

// 古い順
func (u *FeatureImageUsecase) List(ctx context.Context) ([]model.FeatureImage, error) {
	list, err := u.images.List(ctx)
	if err != nil {
		return []model.FeatureImage{}, PersistenceError(err)
	}
	return list, nil
}

// 存在しないIDは404（何も変わらない）
func (u *FeatureImageUsecase) Delete(ctx context.Context, adminUserID int64, id int64) error {
	if adminUserID <= 0 {
		return UnauthorizedError()
	}
	if id <= 0 {
		return ValidationError("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		img, err := r.FeatureImages().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError()
		}
		if err != nil {
			return PersistenceError(err)
		}

		if err := r.FeatureImages().Delete(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFoundError()
			}
			return PersistenceError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionDeleteFeature,
			ResourceType: model.AuditResourceFeature,
			ResourceID:   id,
			BeforeJSON:   fmt.Sprintf(`{"image":%q}`, img.Image),
			AfterJSON:    "null",
			CreatedAt:    time.Now(),
		}); err != nil {
			return PersistenceError(err)
		}
		return nil
	})
	if err != nil {
		return toHTTPError(err)
	}
	return nil
}
