package domain

import "time"

// Subject is the local mirror of an identity-provider subject. The provider
// owns the identity record; we cache the fields the dashboard needs and layer
// two-factor state on top, since the provider knows nothing about it.
type Subject struct {
	ID         string // provider-assigned, stable
	Email      string
	Username   string
	Phone      string
	IsVerified bool

	// TwoFactorSecret is the TOTP secret, encrypted at rest (nullable).
	TwoFactorSecret *string

	// TwoFactorPendingAt is when the current secret was generated during an
	// enrollment that has not been confirmed yet (nullable).
	TwoFactorPendingAt *time.Time

	// TwoFactorEnabled is when enrollment was confirmed (nullable).
	TwoFactorEnabled *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTwoFactor reports whether the subject completed two-factor enrollment.
func (s Subject) HasTwoFactor() bool {
	return s.TwoFactorEnabled != nil
}

// HasPendingTwoFactor reports whether an enrollment was started but never
// confirmed with a passcode.
func (s Subject) HasPendingTwoFactor() bool {
	return s.TwoFactorSecret != nil && s.TwoFactorEnabled == nil
}
