package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/sync"
)

func TestGormChangeLogRepository_FindAfter(t *testing.T) {
	t.Run("excludes other stores but keeps global entries", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormChangeLogRepository(db)

		storeID := uuid.New()
		rows := sqlmock.NewRows([]string{"seq", "entity_type", "entity_id", "op", "store_id"}).
			AddRow(5, "product", uuid.New(), "upsert", nil).
			AddRow(6, "stock_item", uuid.New(), "upsert", storeID)

		mock.ExpectQuery(`SELECT \* FROM "change_entries" WHERE seq > \$1 AND \(store_id IS NULL OR store_id = \$2\) ORDER BY seq ASC`).
			WithArgs(int64(4), storeID, 100).
			WillReturnRows(rows)

		entries, err := repo.FindAfter(context.Background(), 4, storeID, 100)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(5), entries[0].Seq)
		assert.Nil(t, entries[0].StoreID)
		assert.Equal(t, int64(6), entries[1].Seq)
	})
}

func TestGormChangeLogRepository_LatestSeq(t *testing.T) {
	t.Run("returns highest sequence", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormChangeLogRepository(db)

		mock.ExpectQuery(`SELECT MAX\(seq\) FROM "change_entries"`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(42))

		seq, err := repo.LatestSeq(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(42), seq)
	})

	t.Run("returns zero on an empty log", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormChangeLogRepository(db)

		mock.ExpectQuery(`SELECT MAX\(seq\) FROM "change_entries"`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		seq, err := repo.LatestSeq(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), seq)
	})
}

func TestGormChangeLogRepository_PruneBefore(t *testing.T) {
	t.Run("reports the number of pruned entries", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormChangeLogRepository(db)

		mock.ExpectExec(`DELETE FROM "change_entries" WHERE seq <= \$1`).
			WithArgs(int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 37))

		pruned, err := repo.PruneBefore(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, int64(37), pruned)
	})
}

func TestGormChangeLogRepository_Append(t *testing.T) {
	t.Run("inserts the entry", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormChangeLogRepository(db)

		entry, err := sync.NewChangeEntry(sync.EntityTypeProduct, uuid.New(), sync.ChangeOpUpsert, nil, []byte(`{}`))
		require.NoError(t, err)

		mock.ExpectQuery(`INSERT INTO "change_entries"`).
			WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(7))

		err = repo.Append(context.Background(), entry)
		require.NoError(t, err)
	})
}
