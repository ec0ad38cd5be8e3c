package repository

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerGormRepository struct {
	db *gorm.DB
}

// DI
func NewCustomerGormRepository(db *gorm.DB) *CustomerGormRepository {
	return &CustomerGormRepository{db: db}
}

// user_idの顧客を返す。無ければ作る。
// INSERT ... ON CONFLICT (user_id) DO NOTHING なので同時に来ても1件しかできない
func (r *CustomerGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Customer, error) {
	db := r.db.WithContext(ctx)

	c := model.Customer{
		UserID:     userID,
		Membership: model.MembershipBronze,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&c).Error; err != nil {
		return model.Customer{}, err
	}

	var out model.Customer
	if err := db.Where("user_id = ?", userID).First(&out).Error; err != nil {
		return model.Customer{}, err
	}
	return out, nil
}

func (r *CustomerGormRepository) FindByID(ctx context.Context, customerID int64) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("id = ?", customerID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

func (r *CustomerGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Customer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// プロフィール項目だけ更新（user_idは変えない）
func (r *CustomerGormRepository) Update(ctx context.Context, c model.Customer) error {
	res := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", c.ID).
		Select("first_name", "last_name", "email", "phone", "birth_date", "membership").
		Updates(&c)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 管理者用の一覧（注文数つき、名前順）
func (r *CustomerGormRepository) List(ctx context.Context, q repo.CustomerListQuery) ([]repo.CustomerSummary, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}

	base := r.db.WithContext(ctx).Model(&model.Customer{})
	if s := strings.TrimSpace(q.Search); s != "" {
		base = base.Where("LOWER(customers.first_name) LIKE ?", strings.ToLower(s)+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return []repo.CustomerSummary{}, 0, err
	}

	var rows []repo.CustomerSummary
	offset := (q.Page - 1) * q.Limit
	err := base.
		Select("customers.*, COUNT(orders.id) AS orders_count").
		Joins("LEFT JOIN orders ON orders.customer_id = customers.id").
		Group("customers.id").
		Order("customers.first_name asc, customers.last_name asc, customers.id asc").
		Limit(q.Limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return []repo.CustomerSummary{}, 0, err
	}

	return rows, total, nil
}
