package users

import (
	"errors"
	"regexp"
	"strings"
)

// Channel is the delivery channel of a verification code.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

const (
	MethodPhone = "phone"
	MethodEmail = "email"
)

var (
	ErrInvalidPhone   = errors.New("invalid phone number format")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrInvalidMethod  = errors.New("method must be phone or email")
	ErrInvalidOTPCode = errors.New("OTP code must be 4-10 digits")
)

var (
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	otpPattern   = regexp.MustCompile(`^\d{4,10}$`)
)

func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	phone = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func ValidateOTPCode(code string) error {
	if !otpPattern.MatchString(strings.TrimSpace(code)) {
		return ErrInvalidOTPCode
	}
	return nil
}

// NormalizeIdentifier validates an identifier for the given method and returns
// its canonical form together with the delivery channel.
func NormalizeIdentifier(method, identifier string) (string, Channel, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case MethodPhone:
		v, err := NormalizePhone(identifier)
		return v, ChannelSMS, err
	case MethodEmail:
		v, err := NormalizeEmail(identifier)
		return v, ChannelEmail, err
	default:
		return "", "", ErrInvalidMethod
	}
}
