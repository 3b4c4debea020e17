package partner

import (
	"strings"
	"time"

	"github.com/nextstock/backend/internal/domain/shared"
)

// StoreStatus represents the status of a store
type StoreStatus string

const (
	StoreStatusActive   StoreStatus = "active"
	StoreStatusInactive StoreStatus = "inactive"
)

// Store represents a retail location. Inventory levels, cash sessions and
// settings are scoped per store.
type Store struct {
	shared.BaseAggregateRoot
	Code      string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string      `gorm:"type:varchar(200);not null"`
	Phone     string      `gorm:"type:varchar(50)"`
	Email     string      `gorm:"type:varchar(200)"`
	Address   string      `gorm:"type:text"`
	City      string      `gorm:"type:varchar(100)"`
	IsDefault bool        `gorm:"not null;default:false"` // Default store for single-location setups
	Status    StoreStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes     string      `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new store with required fields
func NewStore(code, name string) (*Store, error) {
	if err := validateStoreCode(code); err != nil {
		return nil, err
	}
	if err := validateStoreName(name); err != nil {
		return nil, err
	}

	store := &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            StoreStatusActive,
	}

	store.AddDomainEvent(NewStoreCreatedEvent(store))

	return store, nil
}

// Update updates the store's basic information
func (s *Store) Update(name, phone, email, address, city, notes string) error {
	if err := validateStoreName(name); err != nil {
		return err
	}

	s.Name = name
	s.Phone = phone
	s.Email = email
	s.Address = address
	s.City = city
	s.Notes = notes
	s.touch()

	s.AddDomainEvent(NewStoreUpdatedEvent(s))

	return nil
}

// MarkDefault flags this store as the default for operations
// The service layer clears the flag on the previous default
func (s *Store) MarkDefault() {
	s.IsDefault = true
	s.touch()
}

// UnmarkDefault clears the default flag
func (s *Store) UnmarkDefault() {
	s.IsDefault = false
	s.touch()
}

// Enable activates the store
func (s *Store) Enable() error {
	if s.Status == StoreStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Store is already active")
	}

	s.Status = StoreStatusActive
	s.touch()

	s.AddDomainEvent(NewStoreUpdatedEvent(s))

	return nil
}

// Disable deactivates the store. A disabled store rejects new cash sessions
// and stock operations.
func (s *Store) Disable() error {
	if s.Status == StoreStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Store is already inactive")
	}
	if s.IsDefault {
		return shared.NewDomainError("DEFAULT_STORE", "The default store cannot be disabled")
	}

	s.Status = StoreStatusInactive
	s.touch()

	s.AddDomainEvent(NewStoreUpdatedEvent(s))

	return nil
}

// IsActive returns true if the store is active
func (s *Store) IsActive() bool {
	return s.Status == StoreStatusActive
}

func (s *Store) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// validateStoreCode validates the store code
func validateStoreCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Store code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Store code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Store code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateStoreName validates the store name
func validateStoreName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot exceed 200 characters")
	}
	return nil
}
