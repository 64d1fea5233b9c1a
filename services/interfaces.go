package services

import "context"

// PasswordHasher defines an interface for hashing and verifying secrets.
// The same implementation serves both passwords and OTP codes.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(hashedSecret, secret string) error
}

// OTPSender delivers a plaintext OTP message out-of-band (WhatsApp in the
// reference deployment). Delivery is best-effort: callers log failures
// but never roll back an already-stored challenge.
type OTPSender interface {
	Send(ctx context.Context, destination, message string) error
}
