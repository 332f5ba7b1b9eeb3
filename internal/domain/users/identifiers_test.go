package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		identifier  string
		want        string
		wantChannel Channel
		wantErr     error
	}{
		{"phone with spaces and dashes", "phone", "+91 98765-43210", "+919876543210", ChannelSMS, nil},
		{"phone without plus", "phone", "9876543210", "9876543210", ChannelSMS, nil},
		{"phone with letters", "phone", "98765abc10", "", ChannelSMS, ErrInvalidPhone},
		{"phone leading zero", "phone", "0123456789", "", ChannelSMS, ErrInvalidPhone},
		{"email is lowercased", "email", "  Rider@Example.COM ", "rider@example.com", ChannelEmail, nil},
		{"email missing domain", "email", "rider@", "", ChannelEmail, ErrInvalidEmail},
		{"method is case insensitive", "PHONE", "+14155550100", "+14155550100", ChannelSMS, nil},
		{"unknown method", "whatsapp", "+14155550100", "", "", ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, channel, err := NormalizeIdentifier(tt.method, tt.identifier)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChannel, channel)
		})
	}
}

func TestValidateOTPCode(t *testing.T) {
	for _, code := range []string{"1234", "123456", "1234567890", " 654321 "} {
		assert.NoError(t, ValidateOTPCode(code), code)
	}
	for _, code := range []string{"", "123", "12345678901", "12a456"} {
		assert.ErrorIs(t, ValidateOTPCode(code), ErrInvalidOTPCode, code)
	}
}
