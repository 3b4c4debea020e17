package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/shared"
)

func TestGormSaleRepository_NextNumber(t *testing.T) {
	day := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	t.Run("starts at 0001 on a fresh day", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormSaleRepository(db)

		storeID := uuid.New()
		mock.ExpectQuery(`SELECT "number" FROM "sales" WHERE store_id = \$1 AND number LIKE \$2`).
			WithArgs(storeID, "SAL-20260830-%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"number"}))

		number, err := repo.NextNumber(context.Background(), storeID, day)
		require.NoError(t, err)
		assert.Equal(t, "SAL-20260830-0001", number)
	})

	t.Run("increments past the highest existing number", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormSaleRepository(db)

		storeID := uuid.New()
		mock.ExpectQuery(`SELECT "number" FROM "sales" WHERE store_id = \$1 AND number LIKE \$2`).
			WithArgs(storeID, "SAL-20260830-%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow("SAL-20260830-0041"))

		number, err := repo.NextNumber(context.Background(), storeID, day)
		require.NoError(t, err)
		assert.Equal(t, "SAL-20260830-0042", number)
	})
}

func TestGormProformaRepository_NextNumber(t *testing.T) {
	t.Run("uses the PRO prefix", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProformaRepository(db)

		storeID := uuid.New()
		day := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT "number" FROM "proformas" WHERE store_id = \$1 AND number LIKE \$2`).
			WithArgs(storeID, "PRO-20260830-%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"number"}))

		number, err := repo.NextNumber(context.Background(), storeID, day)
		require.NoError(t, err)
		assert.Equal(t, "PRO-20260830-0001", number)
	})
}

func TestGormSaleRepository_FindByNumber(t *testing.T) {
	t.Run("returns ErrNotFound for an unknown number", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormSaleRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "sales" WHERE number = \$1`).
			WithArgs("SAL-20260830-9999", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByNumber(context.Background(), "SAL-20260830-9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
