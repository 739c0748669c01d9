package models

import "strings"

// User is a normal (non-staff) account as listed by the back office.
// IsActive and IsBlock are independent: a blocked user may still be active.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ReferralCode *string   `json:"referral_code"`
	IsActive     bool      `json:"is_active"`
	IsBlock      bool      `json:"is_block"`
	DateJoined   Timestamp `json:"date_joined"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ActivityLabel is the status badge text shown in the users table.
func (u User) ActivityLabel() string {
	if u.IsActive {
		return "Actif"
	}
	return "Inactif"
}
