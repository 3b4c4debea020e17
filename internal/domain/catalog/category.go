package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/shared"
)

// MaxCategoryDepth caps the category hierarchy. Deeper trees make the POS
// navigation unusable on small screens.
const MaxCategoryDepth = 3

// CategoryStatus represents the status of a category.
type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

// Category is a node in the product category tree. Path is the materialized
// chain of ancestor IDs, which keeps subtree queries to a single prefix scan.
type Category struct {
	shared.BaseAggregateRoot
	Code      string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string         `gorm:"type:varchar(100);not null"`
	ParentID  *uuid.UUID     `gorm:"type:uuid;index"`
	Path      string         `gorm:"type:varchar(500);not null;index"`
	Level     int            `gorm:"not null;default:0"`
	SortOrder int            `gorm:"not null;default:0"`
	Status    CategoryStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a root category. The root's path is its own ID.
func NewCategory(code, name string) (*Category, error) {
	return newCategory(code, name, nil)
}

// NewChildCategory creates a category under parent, inheriting its path.
func NewChildCategory(code, name string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED",
			fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}
	return newCategory(code, name, parent)
}

func newCategory(code, name string, parent *Category) (*Category, error) {
	if err := validateCategoryCode(code); err != nil {
		return nil, err
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	c := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            CategoryStatusActive,
	}
	if parent == nil {
		c.Path = c.ID.String()
	} else {
		c.ParentID = &parent.ID
		c.Level = parent.Level + 1
		c.Path = parent.Path + "/" + c.ID.String()
	}

	c.AddDomainEvent(NewCategoryCreatedEvent(c))
	return c, nil
}

// Rename updates the display name.
func (c *Category) Rename(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = name
	c.touch()
	c.AddDomainEvent(NewCategoryUpdatedEvent(c))
	return nil
}

// SetSortOrder sets the position among siblings in POS navigation.
func (c *Category) SetSortOrder(order int) {
	c.SortOrder = order
	c.touch()
}

// Activate makes the category visible again.
func (c *Category) Activate() error {
	return c.setStatus(CategoryStatusActive, "ALREADY_ACTIVE", "Category is already active")
}

// Deactivate hides the category without deleting it.
func (c *Category) Deactivate() error {
	return c.setStatus(CategoryStatusInactive, "ALREADY_INACTIVE", "Category is already inactive")
}

func (c *Category) setStatus(status CategoryStatus, code, msg string) error {
	if c.Status == status {
		return shared.NewDomainError(code, msg)
	}
	c.Status = status
	c.touch()
	c.AddDomainEvent(NewCategoryUpdatedEvent(c))
	return nil
}

func (c *Category) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func (c *Category) IsActive() bool {
	return c.Status == CategoryStatusActive
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsAncestorOf reports whether other sits anywhere below this category.
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.Path == "" {
		return false
	}
	return strings.HasPrefix(other.Path, c.Path+"/")
}

func validateCategoryCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !isCodeRune(r) {
			return shared.NewDomainError("INVALID_CODE",
				"Category code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func isCodeRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-':
		return true
	}
	return false
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
