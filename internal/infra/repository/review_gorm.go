package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) repo.ReviewRepository {
	return &reviewGormRepository{db: db}
}

func (r *reviewGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.Review, error) {
	var list []model.Review
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *reviewGormRepository) FindByID(ctx context.Context, productID, reviewID int64) (model.Review, error) {
	var rv model.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", reviewID, productID).
		First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Review{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

func (r *reviewGormRepository) Create(ctx context.Context, rv model.Review) (model.Review, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rv).Error; err != nil {
		return model.Review{}, err
	}
	return rv, nil
}

// name / description だけ更新
func (r *reviewGormRepository) Update(ctx context.Context, rv model.Review) error {
	res := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("id = ? AND product_id = ?", rv.ID, rv.ProductID).
		Updates(map[string]interface{}{
			"name":        rv.Name,
			"description": rv.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *reviewGormRepository) Delete(ctx context.Context, productID, reviewID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", reviewID, productID).
		Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
