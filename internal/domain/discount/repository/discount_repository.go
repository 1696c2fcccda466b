package repository

import (
	"errors"

	"gorm.io/gorm"

	"warranty_shop/internal/domain/discount/model"
)

type DiscountRepository interface {
	Create(code *model.DiscountCode) error
	Update(code *model.DiscountCode) error
	GetByCode(code string) (*model.DiscountCode, error)
	CodeExists(code string) (bool, error)
	List(limit int) ([]model.DiscountCode, error)
	IncrementUsage(codeID string) error
	CreateRedemption(redemption *model.Redemption) error
	HasRedemption(codeID, email string) (bool, error)
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(code *model.DiscountCode) error {
	return r.db.Create(code).Error
}

func (r *discountRepository) Update(code *model.DiscountCode) error {
	return r.db.Save(code).Error
}

func (r *discountRepository) GetByCode(code string) (*model.DiscountCode, error) {
	var row model.DiscountCode
	if err := r.db.Where("code = ?", code).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *discountRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.DiscountCode{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *discountRepository) List(limit int) ([]model.DiscountCode, error) {
	var codes []model.DiscountCode
	err := r.db.Order("created_at DESC").Limit(limit).Find(&codes).Error
	return codes, err
}

// IncrementUsage bumps used_count only while under the limit, so two
// concurrent checkouts cannot overshoot it.
func (r *discountRepository) IncrementUsage(codeID string) error {
	result := r.db.Model(&model.DiscountCode{}).
		Where("id = ? AND used_count < usage_limit", codeID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("usage limit reached")
	}
	return nil
}

func (r *discountRepository) CreateRedemption(redemption *model.Redemption) error {
	return r.db.Create(redemption).Error
}

func (r *discountRepository) HasRedemption(codeID, email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Redemption{}).
		Where("code_id = ? AND email = ?", codeID, email).
		Count(&count).Error
	return count > 0, err
}
