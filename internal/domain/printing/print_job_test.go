package printing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(t *testing.T) *PrintJob {
	t.Helper()
	job, err := NewPrintJob(uuid.New(), DocTypeReceipt, uuid.New(), "SAL-20260830-0001", uuid.New())
	require.NoError(t, err)
	return job
}

func TestNewPrintJob(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		job := newJob(t)
		assert.Equal(t, JobStatusPending, job.Status)
	})

	t.Run("rejects unknown doc type", func(t *testing.T) {
		_, err := NewPrintJob(uuid.New(), DocType("INVOICE"), uuid.New(), "X-1", uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects empty document number", func(t *testing.T) {
		_, err := NewPrintJob(uuid.New(), DocTypeReceipt, uuid.New(), "", uuid.New())
		assert.Error(t, err)
	})
}

func TestPrintJob_Lifecycle(t *testing.T) {
	t.Run("pending to completed", func(t *testing.T) {
		job := newJob(t)

		require.NoError(t, job.StartRendering())
		require.NoError(t, job.Complete("receipts/2026/08/SAL-20260830-0001.pdf"))

		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.NotNil(t, job.RenderedAt)
	})

	t.Run("cannot complete without rendering", func(t *testing.T) {
		job := newJob(t)
		assert.Error(t, job.Complete("key"))
	})

	t.Run("failed job can retry", func(t *testing.T) {
		job := newJob(t)
		require.NoError(t, job.StartRendering())
		require.NoError(t, job.Fail("chrome timeout"))

		require.NoError(t, job.StartRendering())

		assert.Equal(t, JobStatusRendering, job.Status)
		assert.Empty(t, job.ErrorMessage)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		job := newJob(t)
		require.NoError(t, job.StartRendering())
		require.NoError(t, job.Complete("key"))

		assert.Error(t, job.StartRendering())
		assert.Error(t, job.Fail("late"))
	})
}
