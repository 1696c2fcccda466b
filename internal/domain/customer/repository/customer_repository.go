package repository

import (
	"errors"

	"gorm.io/gorm"

	"warranty_shop/internal/domain/customer/model"
)

type CustomerRepository interface {
	// UpsertCustomer creates or refreshes the row for an email and
	// returns it with its ID populated.
	UpsertCustomer(c *model.Customer) (*model.Customer, error)
	GetCustomerByEmail(email string) (*model.Customer, error)
	GetCustomerByID(id string) (*model.Customer, error)
	ListCustomers(limit int) ([]model.Customer, error)

	CreatePolicy(p *model.Policy) error
	GetPolicyByID(id string) (*model.Policy, error)
	GetPolicyByReference(reference string) (*model.Policy, error)
	PolicyExistsForSession(sessionID, registration string) (bool, error)
	ListPoliciesBySession(sessionID string) ([]model.Policy, error)
	ListRecentPolicies(limit int) ([]model.Policy, error)
	UpdatePolicyStatus(id, status, lastError string) error

	CreateEvent(event *model.DomainEvent) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) UpsertCustomer(c *model.Customer) (*model.Customer, error) {
	var existing model.Customer
	err := r.db.Where("email = ?", c.Email).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(c).Error; err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	// Repeat buyer: keep the row, refresh the contact details.
	updates := map[string]interface{}{
		"title":          c.Title,
		"first_name":     c.FirstName,
		"last_name":      c.LastName,
		"phone":          c.Phone,
		"address_line1":  c.AddressLine1,
		"address_line2":  c.AddressLine2,
		"city":           c.City,
		"postcode":       c.Postcode,
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *customerRepository) GetCustomerByEmail(email string) (*model.Customer, error) {
	var row model.Customer
	if err := r.db.Where("email = ?", email).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *customerRepository) GetCustomerByID(id string) (*model.Customer, error) {
	var row model.Customer
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *customerRepository) ListCustomers(limit int) ([]model.Customer, error) {
	var rows []model.Customer
	err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *customerRepository) CreatePolicy(p *model.Policy) error {
	return r.db.Create(p).Error
}

func (r *customerRepository) GetPolicyByID(id string) (*model.Policy, error) {
	var row model.Policy
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *customerRepository) GetPolicyByReference(reference string) (*model.Policy, error) {
	var row model.Policy
	if err := r.db.Where("reference = ?", reference).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *customerRepository) PolicyExistsForSession(sessionID, registration string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Policy{}).
		Where("stripe_session_id = ? AND registration = ?", sessionID, registration).
		Count(&count).Error
	return count > 0, err
}

func (r *customerRepository) ListPoliciesBySession(sessionID string) ([]model.Policy, error) {
	var rows []model.Policy
	err := r.db.Where("stripe_session_id = ?", sessionID).Find(&rows).Error
	return rows, err
}

func (r *customerRepository) ListRecentPolicies(limit int) ([]model.Policy, error) {
	var rows []model.Policy
	err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *customerRepository) UpdatePolicyStatus(id, status, lastError string) error {
	return r.db.Model(&model.Policy{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "last_error": lastError}).Error
}

func (r *customerRepository) CreateEvent(event *model.DomainEvent) error {
	return r.db.Create(event).Error
}
