package identity

import (
	"context"
	"errors"

	"repairmybike-api/internal/domain/users"
)

var (
	ErrNotConfigured = errors.New("identity provider not configured")
	ErrProvider      = errors.New("identity provider error")
)

// Verification is the outcome of checking a code with the provider.
type Verification struct {
	Approved bool
	Status   string
	// SubjectID is the provider's stable id for the verified identity.
	SubjectID string
}

// Provider sends and checks one-time codes. Codes never pass through this
// service; only the provider knows them.
type Provider interface {
	SendCode(ctx context.Context, channel users.Channel, to string) error
	VerifyCode(ctx context.Context, channel users.Channel, to, code string) (Verification, error)
}

// Disabled is used when no provider credentials are configured.
type Disabled struct{}

func (Disabled) SendCode(context.Context, users.Channel, string) error { return ErrNotConfigured }

func (Disabled) VerifyCode(context.Context, users.Channel, string, string) (Verification, error) {
	return Verification{}, ErrNotConfigured
}
