package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type CollectionGormRepository struct {
	db *gorm.DB
}

// DI
func NewCollectionGormRepository(db *gorm.DB) *CollectionGormRepository {
	return &CollectionGormRepository{db: db}
}

func (r *CollectionGormRepository) withCount(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Select("collections.*, COUNT(products.id) AS products_count").
		Joins("LEFT JOIN products ON products.collection_id = collections.id").
		Group("collections.id")
}

func (r *CollectionGormRepository) List(ctx context.Context) ([]repo.CollectionWithCount, error) {
	var rows []repo.CollectionWithCount
	if err := r.withCount(ctx).
		Order("collections.title asc").
		Scan(&rows).Error; err != nil {
		return []repo.CollectionWithCount{}, err
	}
	return rows, nil
}

func (r *CollectionGormRepository) FindByID(ctx context.Context, id int64) (repo.CollectionWithCount, error) {
	var rows []repo.CollectionWithCount
	if err := r.withCount(ctx).
		Where("collections.id = ?", id).
		Scan(&rows).Error; err != nil {
		return repo.CollectionWithCount{}, err
	}
	if len(rows) == 0 {
		return repo.CollectionWithCount{}, repo.ErrNotFound
	}
	return rows[0], nil
}

func (r *CollectionGormRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CollectionGormRepository) Create(ctx context.Context, c model.Collection) (model.Collection, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Collection{}, err
	}
	return c, nil
}

func (r *CollectionGormRepository) Update(ctx context.Context, c model.Collection) error {
	res := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("id = ?", c.ID).
		Select("title", "featured_product_id").
		Updates(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品が残っているコレクションは消さない（PROTECT）
func (r *CollectionGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("collection_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrInUse
		}

		res := tx.Delete(&model.Collection{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
