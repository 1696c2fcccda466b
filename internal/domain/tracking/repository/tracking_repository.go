package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warranty_shop/internal/domain/tracking/model"
)

type TrackingRepository interface {
	UpsertAbandonedCart(cart *model.AbandonedCart) error
	MarkConverted(cartID string) error
	MarkEmailed(cartID string, at time.Time) error
	ListDue(idleSince time.Time, limit int) ([]model.AbandonedCart, error)
	CreateNewsletterSignup(signup *model.NewsletterSignup) error
	HasNewsletterSignup(email string) (bool, error)
	CreateEmailLog(log *model.EmailLog) error
	ListEmailLogs(recipient string, limit int) ([]model.EmailLog, error)
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

// UpsertAbandonedCart keeps one row per cart, refreshing the snapshot
// on every cart touch.
func (r *trackingRepository) UpsertAbandonedCart(cart *model.AbandonedCart) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "total_pence", "item_count", "last_seen_at", "updated_at",
		}),
	}).Create(cart).Error
}

func (r *trackingRepository) MarkConverted(cartID string) error {
	return r.db.Model(&model.AbandonedCart{}).
		Where("cart_id = ?", cartID).
		Update("converted", true).Error
}

func (r *trackingRepository) MarkEmailed(cartID string, at time.Time) error {
	return r.db.Model(&model.AbandonedCart{}).
		Where("cart_id = ?", cartID).
		Update("emailed_at", at).Error
}

// ListDue returns unconverted, un-mailed carts idle since the cutoff.
func (r *trackingRepository) ListDue(idleSince time.Time, limit int) ([]model.AbandonedCart, error) {
	var carts []model.AbandonedCart
	err := r.db.Where("converted = ? AND emailed_at IS NULL AND last_seen_at < ?", false, idleSince).
		Order("last_seen_at").
		Limit(limit).
		Find(&carts).Error
	return carts, err
}

func (r *trackingRepository) CreateNewsletterSignup(signup *model.NewsletterSignup) error {
	return r.db.Create(signup).Error
}

func (r *trackingRepository) HasNewsletterSignup(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.NewsletterSignup{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *trackingRepository) CreateEmailLog(log *model.EmailLog) error {
	return r.db.Create(log).Error
}

func (r *trackingRepository) ListEmailLogs(recipient string, limit int) ([]model.EmailLog, error) {
	var logs []model.EmailLog
	q := r.db.Order("created_at DESC").Limit(limit)
	if recipient != "" {
		q = q.Where("recipient = ?", recipient)
	}
	err := q.Find(&logs).Error
	return logs, err
}
