package identity

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nextstock/backend/internal/domain/shared"
)

// UserStatus represents the status of a user account.
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"
	UserStatusDeactivated UserStatus = "deactivated"
)

const bcryptCost = 12

var (
	usernameRe   = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	hasLetterRe  = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberRe  = regexp.MustCompile(`[0-9]`)
	pinRe        = regexp.MustCompile(`^[0-9]{4,6}$`)
	emailRe      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is a staff member: cashier, manager or admin.
type User struct {
	shared.BaseAggregateRoot
	Username     string     `gorm:"size:100;not null;uniqueIndex"`
	Email        string     `gorm:"size:200;index"`
	Phone        string     `gorm:"size:50"`
	PasswordHash string     `gorm:"size:100;not null"`
	DisplayName  string     `gorm:"size:200"`
	Avatar       string     `gorm:"size:500"`
	Status       UserStatus `gorm:"size:20;not null;index"`
	// StoreID is the user's home store; nil means all stores (admins).
	StoreID *uuid.UUID `gorm:"type:uuid;index"`
	// RoleIDs live in the user_roles join table, loaded by the repository.
	RoleIDs []uuid.UUID `gorm:"-"`

	LastLoginAt        *time.Time
	LastLoginIP        string `gorm:"size:45"`
	FailedAttempts     int    `gorm:"not null;default:0"`
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool `gorm:"not null;default:false"`

	// ManagerPinHash is the bcrypt hash of the 4-6 digit PIN managers key in
	// to approve register discrepancies and void sales. Empty means unset.
	ManagerPinHash    string `gorm:"size:100"`
	PinFailedAttempts int    `gorm:"not null;default:0"`
	PinLockedUntil    *time.Time

	Notes string `gorm:"size:1000"`
}

func (User) TableName() string {
	return "users"
}

// UserRole is the users-to-roles join table.
type UserRole struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// NewUser creates a user in pending status, awaiting activation.
func NewUser(username, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashSecret(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:      hash,
		Status:            UserStatusPending,
		RoleIDs:           make([]uuid.UUID, 0),
		PasswordChangedAt: &now,
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// NewActiveUser creates a user that can log in immediately.
func NewActiveUser(username, password string) (*User, error) {
	u, err := NewUser(username, password)
	if err != nil {
		return nil, err
	}
	u.Status = UserStatusActive
	return u, nil
}

func (u *User) SetEmail(email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}
	u.Email = email
	u.touch()
	return nil
}

func (u *User) SetPhone(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	u.Phone = strings.TrimSpace(phone)
	u.touch()
	return nil
}

func (u *User) SetDisplayName(displayName string) error {
	if displayName != "" && len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.touch()
	return nil
}

func (u *User) SetAvatar(avatar string) error {
	if avatar != "" && len(avatar) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}
	u.Avatar = avatar
	u.touch()
	return nil
}

func (u *User) SetNotes(notes string) {
	u.Notes = notes
	u.touch()
}

// AssignStore sets the user's home store; nil grants all stores.
func (u *User) AssignStore(storeID *uuid.UUID) {
	u.StoreID = storeID
	u.touch()
}

// CanAccessStore reports whether the user may operate in the given store.
func (u *User) CanAccessStore(storeID uuid.UUID) bool {
	return u.StoreID == nil || *u.StoreID == storeID
}

// ChangePassword rotates the password after verifying the current one.
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword replaces the password without a current-password check, for
// admin resets.
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashSecret(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.MustChangePassword = false
	u.touch()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// ForcePasswordChange requires a new password on the next login.
func (u *User) ForcePasswordChange() {
	u.MustChangePassword = true
	u.touch()
}

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetManagerPin sets the approval PIN, clearing any lockout.
func (u *User) SetManagerPin(pin string) error {
	if err := validatePin(pin); err != nil {
		return err
	}

	hash, err := hashSecret(pin)
	if err != nil {
		return shared.NewDomainError("PIN_HASH_ERROR", "Failed to hash PIN")
	}

	u.ManagerPinHash = hash
	u.resetPinLockout()
	u.touch()

	u.AddDomainEvent(NewUserPinChangedEvent(u))
	return nil
}

// ClearManagerPin removes the approval PIN.
func (u *User) ClearManagerPin() {
	u.ManagerPinHash = ""
	u.resetPinLockout()
	u.touch()
}

func (u *User) HasManagerPin() bool {
	return u.ManagerPinHash != ""
}

func (u *User) IsPinLocked() bool {
	return u.PinLockedUntil != nil && time.Now().Before(*u.PinLockedUntil)
}

// VerifyManagerPin checks the PIN against the stored hash. Failures count
// toward a lockout; a success resets the counter.
func (u *User) VerifyManagerPin(pin string, maxAttempts int, lockDuration time.Duration) error {
	if !u.HasManagerPin() {
		return shared.NewDomainError("NO_PIN", "User has no approval PIN configured")
	}
	if u.IsPinLocked() {
		return shared.NewDomainError("PIN_LOCKED", "PIN verification is temporarily locked")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.ManagerPinHash), []byte(pin)) != nil {
		u.PinFailedAttempts++
		if u.PinFailedAttempts >= maxAttempts {
			until := time.Now().Add(lockDuration)
			u.PinLockedUntil = &until
			u.PinFailedAttempts = 0
		}
		u.touch()
		return shared.ErrInvalidPin
	}

	u.resetPinLockout()
	u.touch()
	return nil
}

func (u *User) resetPinLockout() {
	u.PinFailedAttempts = 0
	u.PinLockedUntil = nil
}

func (u *User) AssignRole(roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
	}
	if u.HasRole(roleID) {
		return shared.NewDomainError("ROLE_ALREADY_ASSIGNED", "User already has this role")
	}

	u.RoleIDs = append(u.RoleIDs, roleID)
	u.touch()

	u.AddDomainEvent(NewUserRoleAssignedEvent(u, roleID))
	return nil
}

func (u *User) RemoveRole(roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
	}
	if !u.HasRole(roleID) {
		return shared.NewDomainError("ROLE_NOT_ASSIGNED", "User does not have this role")
	}

	u.RoleIDs = slices.DeleteFunc(u.RoleIDs, func(rid uuid.UUID) bool {
		return rid == roleID
	})
	u.touch()

	u.AddDomainEvent(NewUserRoleRemovedEvent(u, roleID))
	return nil
}

// SetRoles replaces the role set, dropping duplicates and keeping order.
func (u *User) SetRoles(roleIDs []uuid.UUID) error {
	unique := make([]uuid.UUID, 0, len(roleIDs))
	for _, rid := range roleIDs {
		if rid == uuid.Nil {
			return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
		}
		if !slices.Contains(unique, rid) {
			unique = append(unique, rid)
		}
	}

	u.RoleIDs = unique
	u.touch()
	return nil
}

func (u *User) HasRole(roleID uuid.UUID) bool {
	return slices.Contains(u.RoleIDs, roleID)
}

// Activate moves the user to active and clears any login lockout.
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	old := u.Status
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, UserStatusActive))
	return nil
}

func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	old := u.Status
	u.Status = UserStatusDeactivated
	u.touch()

	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, UserStatusDeactivated))
	return nil
}

// Lock locks the account, with an expiry when duration is positive.
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Cannot lock a deactivated user")
	}

	old := u.Status
	u.Status = UserStatusLocked
	if duration > 0 {
		until := time.Now().Add(duration)
		u.LockedUntil = &until
	}
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, UserStatusLocked))
	return nil
}

func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, UserStatusLocked, UserStatusActive))
	return nil
}

// RecordLoginSuccess stores the login time and source IP and resets the
// failure counter.
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.touch()
}

// RecordLoginFailure counts a failed attempt and reports whether the
// account got locked as a result.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.touch()

	if u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}
	return false
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked reports whether the lock is still in force; an expired lock no
// longer counts.
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

func (u *User) IsDeactivated() bool {
	return u.Status == UserStatusDeactivated
}

func (u *User) CanLogin() bool {
	if u.Status == UserStatusDeactivated || u.Status == UserStatusPending {
		return false
	}
	return !u.IsLocked()
}

// GetDisplayNameOrUsername is what receipts and the session header show.
func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	case len(username) < 3:
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	case len(username) > 100:
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	case !usernameRe.MatchString(username):
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	case len(password) < 8:
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	case len(password) > 128:
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	case !hasLetterRe.MatchString(password) || !hasNumberRe.MatchString(password):
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validatePin(pin string) error {
	if !pinRe.MatchString(pin) {
		return shared.NewDomainError("INVALID_PIN_FORMAT", "PIN must be 4 to 6 digits")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRe.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
