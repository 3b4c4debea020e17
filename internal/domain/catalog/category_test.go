package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("creates root category with valid inputs", func(t *testing.T) {
		category, err := NewCategory("DRINKS", "Drinks")
		require.NoError(t, err)
		require.NotNil(t, category)

		assert.Equal(t, "DRINKS", category.Code)
		assert.Equal(t, "Drinks", category.Name)
		assert.Nil(t, category.ParentID)
		assert.Equal(t, 0, category.Level)
		assert.Equal(t, CategoryStatusActive, category.Status)
		assert.True(t, category.IsRoot())
		assert.Equal(t, category.ID.String(), category.Path)
	})

	t.Run("converts code to uppercase", func(t *testing.T) {
		category, err := NewCategory("drinks", "Drinks")
		require.NoError(t, err)
		assert.Equal(t, "DRINKS", category.Code)
	})

	t.Run("publishes CategoryCreated event", func(t *testing.T) {
		category, err := NewCategory("TEST", "Test")
		require.NoError(t, err)

		events := category.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCategoryCreated, events[0].EventType())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewCategory("", "Drinks")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code cannot be empty")
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		_, err := NewCategory("DRI@NKS", "Drinks")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can only contain letters")
	})
}

func TestNewChildCategory(t *testing.T) {
	parent, err := NewCategory("DRINKS", "Drinks")
	require.NoError(t, err)

	t.Run("creates child category under parent", func(t *testing.T) {
		child, err := NewChildCategory("SODAS", "Sodas", parent)
		require.NoError(t, err)
		require.NotNil(t, child)

		assert.Equal(t, "SODAS", child.Code)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, parent.ID, *child.ParentID)
		assert.Equal(t, 1, child.Level)
		assert.Equal(t, parent.Path+"/"+child.ID.String(), child.Path)
		assert.False(t, child.IsRoot())
	})

	t.Run("fails with nil parent", func(t *testing.T) {
		_, err := NewChildCategory("SODAS", "Sodas", nil)
		require.Error(t, err)
	})

	t.Run("fails beyond max depth", func(t *testing.T) {
		level1, err := NewChildCategory("L1", "Level 1", parent)
		require.NoError(t, err)
		level2, err := NewChildCategory("L2", "Level 2", level1)
		require.NoError(t, err)

		_, err = NewChildCategory("L3", "Level 3", level2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "depth cannot exceed")
	})
}

func TestCategoryAncestry(t *testing.T) {
	parent, err := NewCategory("DRINKS", "Drinks")
	require.NoError(t, err)
	child, err := NewChildCategory("SODAS", "Sodas", parent)
	require.NoError(t, err)
	other, err := NewCategory("SNACKS", "Snacks")
	require.NoError(t, err)

	assert.True(t, parent.IsAncestorOf(child))
	assert.False(t, child.IsAncestorOf(parent))
	assert.False(t, other.IsAncestorOf(child))
}

func TestCategoryStatus(t *testing.T) {
	category, err := NewCategory("DRINKS", "Drinks")
	require.NoError(t, err)

	require.NoError(t, category.Deactivate())
	assert.False(t, category.IsActive())
	assert.Error(t, category.Deactivate())

	require.NoError(t, category.Activate())
	assert.True(t, category.IsActive())
	assert.Error(t, category.Activate())
}

func TestCategoryRename(t *testing.T) {
	category, err := NewCategory("DRINKS", "Drinks")
	require.NoError(t, err)

	require.NoError(t, category.Rename("Beverages"))
	assert.Equal(t, "Beverages", category.Name)

	assert.Error(t, category.Rename(""))
}
