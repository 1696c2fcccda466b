package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"warranty_shop/internal/domain/customer/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestGetCustomerByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "first_name"}).
		AddRow("cust-1", "alan@example.com", "Alan")
	mock.ExpectQuery(`SELECT (.+) FROM "customers" WHERE email = (.+)`).
		WillReturnRows(rows)

	customer, err := repo.GetCustomerByEmail("alan@example.com")

	require.NoError(t, err)
	assert.Equal(t, "cust-1", customer.ID)
	assert.Equal(t, "Alan", customer.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyExistsForSession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "policies" WHERE \(?stripe_session_id = (.+) AND registration = (.+)`).
		WithArgs("cs_123", "AB12CDE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.PolicyExistsForSession("cs_123", "AB12CDE")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePolicyStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "policies" SET (.+) WHERE id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePolicyStatus("policy-1", model.PolicyStatusRegistered, "")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCustomer(t *testing.T) {
	t.Run("New email inserts", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCustomerRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM "customers" WHERE email = (.+)`).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "customers"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-2"))
		mock.ExpectCommit()

		customer, err := repo.UpsertCustomer(&model.Customer{Email: "new@example.com"})

		require.NoError(t, err)
		assert.NotNil(t, customer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Existing email updates in place", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCustomerRepository(db)

		rows := sqlmock.NewRows([]string{"id", "email", "created_at"}).
			AddRow("cust-1", "alan@example.com", time.Now())
		mock.ExpectQuery(`SELECT (.+) FROM "customers" WHERE email = (.+)`).
			WillReturnRows(rows)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "customers" SET (.+)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		customer, err := repo.UpsertCustomer(&model.Customer{Email: "alan@example.com", FirstName: "Alan"})

		require.NoError(t, err)
		assert.Equal(t, "cust-1", customer.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
