package domain

import "time"

// User represents a storefront account. The OTP challenge fields are
// transient: both are set when a login is pending second-factor
// verification and both are cleared when the code is consumed. They must
// never be present one without the other.
type User struct {
	ID           string `bson:"_id,omitempty"`
	Email        string `bson:"email"`
	Name         string `bson:"name"`
	Phone        string `bson:"phone,omitempty"`
	PasswordHash string `bson:"password_hash"`
	Role         Role   `bson:"role"`

	OTPCodeHash  *string    `bson:"otp_code_hash,omitempty"`
	OTPExpiresAt *time.Time `bson:"otp_expires_at,omitempty"`

	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty"`
}

// HasPendingOTP reports whether an OTP challenge is outstanding for the
// user. It only checks field presence, not expiry.
func (u *User) HasPendingOTP() bool {
	return u.OTPCodeHash != nil && u.OTPExpiresAt != nil
}
