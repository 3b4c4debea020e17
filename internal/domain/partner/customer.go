package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/nextstock/backend/internal/domain/shared"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Customer represents a customer record used on sales and proformas
// It is the aggregate root for customer-related operations
type Customer struct {
	shared.BaseAggregateRoot
	Code          string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string         `gorm:"type:varchar(200);not null"`
	Phone         string         `gorm:"type:varchar(50);index"`
	Email         string         `gorm:"type:varchar(200);index"`
	Address       string         `gorm:"type:text"`
	City          string         `gorm:"type:varchar(100)"`
	TaxID         string         `gorm:"type:varchar(50)"` // For proforma/invoice headers
	LoyaltyPoints int            `gorm:"not null;default:0"`
	Status        CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes         string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with required fields
func NewCustomer(code, name string) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            CustomerStatusActive,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name, phone, email, address, city, taxID, notes string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if email != "" && !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}

	c.Name = name
	c.Phone = strings.TrimSpace(phone)
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Address = address
	c.City = city
	c.TaxID = taxID
	c.Notes = notes
	c.touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// AddLoyaltyPoints credits loyalty points earned by a sale
func (c *Customer) AddLoyaltyPoints(points int) error {
	if points <= 0 {
		return shared.NewDomainError("INVALID_POINTS", "Points to add must be positive")
	}

	c.LoyaltyPoints += points
	c.touch()

	return nil
}

// RedeemLoyaltyPoints debits loyalty points
func (c *Customer) RedeemLoyaltyPoints(points int) error {
	if points <= 0 {
		return shared.NewDomainError("INVALID_POINTS", "Points to redeem must be positive")
	}
	if points > c.LoyaltyPoints {
		return shared.NewDomainError("INSUFFICIENT_POINTS", "Customer does not have enough loyalty points")
	}

	c.LoyaltyPoints -= points
	c.touch()

	return nil
}

// Activate activates the customer
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}

	c.Status = CustomerStatusActive
	c.touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}

	c.Status = CustomerStatusInactive
	c.touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// validateCustomerCode validates the customer code
func validateCustomerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Customer code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateCustomerName validates the customer name
func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
