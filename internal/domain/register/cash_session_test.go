package register

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/shared"
)

func amt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func openSession(t *testing.T, openingFloat int64) *CashSession {
	t.Helper()
	s, err := NewCashSession(uuid.New(), uuid.New(), amt(openingFloat))
	require.NoError(t, err)
	return s
}

func TestNewCashSession(t *testing.T) {
	t.Run("opens with float", func(t *testing.T) {
		s := openSession(t, 10000)

		assert.Equal(t, SessionStatusOpen, s.Status)
		assert.True(t, s.OpeningFloat.Equal(amt(10000)))
		assert.True(t, s.CurrentExpectedCash().Equal(amt(10000)))
	})

	t.Run("rejects negative float", func(t *testing.T) {
		_, err := NewCashSession(uuid.New(), uuid.New(), amt(-1))
		assert.Error(t, err)
	})

	t.Run("emits opened event", func(t *testing.T) {
		s := openSession(t, 5000)
		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*SessionOpenedEvent)
		assert.True(t, ok)
	})
}

func TestCashSession_RecordSale(t *testing.T) {
	t.Run("cash sale raises expected cash", func(t *testing.T) {
		s := openSession(t, 10000)

		require.NoError(t, s.RecordSale(amt(2500), true))

		assert.True(t, s.CashSalesTotal.Equal(amt(2500)))
		assert.True(t, s.CurrentExpectedCash().Equal(amt(12500)))
		assert.Equal(t, 1, s.SalesCount)
	})

	t.Run("non-cash sale does not affect drawer", func(t *testing.T) {
		s := openSession(t, 10000)

		require.NoError(t, s.RecordSale(amt(2500), false))

		assert.True(t, s.OtherSalesTotal.Equal(amt(2500)))
		assert.True(t, s.CurrentExpectedCash().Equal(amt(10000)))
	})

	t.Run("void reverses totals", func(t *testing.T) {
		s := openSession(t, 10000)
		require.NoError(t, s.RecordSale(amt(2500), true))

		require.NoError(t, s.RecordVoid(amt(2500), true))

		assert.True(t, s.CashSalesTotal.IsZero())
		assert.Equal(t, 0, s.SalesCount)
	})
}

func TestCashSession_Movements(t *testing.T) {
	t.Run("pay-in raises expected cash", func(t *testing.T) {
		s := openSession(t, 10000)

		_, err := s.RecordPayIn(amt(5000), "change float top-up", uuid.New())

		require.NoError(t, err)
		assert.True(t, s.CurrentExpectedCash().Equal(amt(15000)))
	})

	t.Run("pay-out lowers expected cash", func(t *testing.T) {
		s := openSession(t, 10000)

		_, err := s.RecordPayOut(amt(3000), "supplier delivery", uuid.New())

		require.NoError(t, err)
		assert.True(t, s.CurrentExpectedCash().Equal(amt(7000)))
	})

	t.Run("pay-out cannot exceed drawer", func(t *testing.T) {
		s := openSession(t, 1000)

		_, err := s.RecordPayOut(amt(2000), "bank drop", uuid.New())

		assert.Error(t, err)
	})

	t.Run("requires reason", func(t *testing.T) {
		s := openSession(t, 1000)
		_, err := s.RecordPayIn(amt(500), "", uuid.New())
		assert.Error(t, err)
	})
}

func TestCashSession_Close(t *testing.T) {
	tolerance := amt(500)

	t.Run("closes clean within tolerance", func(t *testing.T) {
		s := openSession(t, 10000)
		require.NoError(t, s.RecordSale(amt(4000), true))
		closer := uuid.New()

		require.NoError(t, s.Close(amt(14000), closer, tolerance, nil, ""))

		assert.Equal(t, SessionStatusClosed, s.Status)
		assert.True(t, s.Discrepancy.IsZero())
		assert.False(t, s.HasDiscrepancy())
		assert.Nil(t, s.ApprovedBy)
	})

	t.Run("small discrepancy closes without approval", func(t *testing.T) {
		s := openSession(t, 10000)

		require.NoError(t, s.Close(amt(9700), uuid.New(), tolerance, nil, ""))

		assert.True(t, s.Discrepancy.Equal(amt(-300)))
		assert.Nil(t, s.ApprovedBy)
	})

	t.Run("large discrepancy requires approval", func(t *testing.T) {
		s := openSession(t, 10000)

		err := s.Close(amt(8000), uuid.New(), tolerance, nil, "")

		assert.ErrorIs(t, err, shared.ErrApprovalRequired)
		assert.Equal(t, SessionStatusOpen, s.Status)
	})

	t.Run("large discrepancy closes with approver", func(t *testing.T) {
		s := openSession(t, 10000)
		manager := uuid.New()

		require.NoError(t, s.Close(amt(8000), uuid.New(), tolerance, &manager, "drawer miscount"))

		assert.Equal(t, SessionStatusClosed, s.Status)
		require.NotNil(t, s.ApprovedBy)
		assert.Equal(t, manager, *s.ApprovedBy)
		assert.True(t, s.Discrepancy.Equal(amt(-2000)))
	})

	t.Run("closer cannot approve own discrepancy", func(t *testing.T) {
		s := openSession(t, 10000)
		closer := uuid.New()

		err := s.Close(amt(8000), closer, tolerance, &closer, "")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrApprovalRequired)
	})

	t.Run("expected cash includes movements", func(t *testing.T) {
		s := openSession(t, 10000)
		require.NoError(t, s.RecordSale(amt(5000), true))
		_, err := s.RecordPayIn(amt(2000), "top-up", uuid.New())
		require.NoError(t, err)
		_, err = s.RecordPayOut(amt(3000), "bank drop", uuid.New())
		require.NoError(t, err)

		require.NoError(t, s.Close(amt(14000), uuid.New(), tolerance, nil, ""))

		assert.True(t, s.ExpectedCash.Equal(amt(14000)))
	})

	t.Run("cannot close twice", func(t *testing.T) {
		s := openSession(t, 10000)
		require.NoError(t, s.Close(amt(10000), uuid.New(), tolerance, nil, ""))

		assert.Error(t, s.Close(amt(10000), uuid.New(), tolerance, nil, ""))
	})

	t.Run("no activity after close", func(t *testing.T) {
		s := openSession(t, 10000)
		require.NoError(t, s.Close(amt(10000), uuid.New(), tolerance, nil, ""))

		assert.Error(t, s.RecordSale(amt(100), true))
		_, err := s.RecordPayIn(amt(100), "late", uuid.New())
		assert.Error(t, err)
	})

	t.Run("emits closed event with discrepancy", func(t *testing.T) {
		s := openSession(t, 10000)
		s.ClearDomainEvents()

		require.NoError(t, s.Close(amt(9800), uuid.New(), tolerance, nil, ""))

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		closed, ok := events[0].(*SessionClosedEvent)
		require.True(t, ok)
		assert.True(t, closed.Discrepancy.Equal(amt(-200)))
	})
}
