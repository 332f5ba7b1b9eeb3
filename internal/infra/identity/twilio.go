package identity

import (
	"context"
	"fmt"

	"repairmybike-api/internal/domain/users"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
	"go.uber.org/zap"
)

const twilioApproved = "approved"

// Twilio delivers and checks codes through a Twilio Verify service.
type Twilio struct {
	client     *twilio.RestClient
	serviceSID string
}

func NewTwilio(accountSID, authToken, serviceSID string) (*Twilio, error) {
	if accountSID == "" || authToken == "" || serviceSID == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &Twilio{client: client, serviceSID: serviceSID}, nil
}

func (t *Twilio) SendCode(ctx context.Context, channel users.Channel, to string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(to)
	params.SetChannel(string(channel))

	resp, err := t.client.VerifyV2.CreateVerification(t.serviceSID, params)
	if err != nil {
		zap.L().Warn("twilio send verification failed", zap.String("channel", string(channel)), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if resp.Sid != nil {
		zap.L().Debug("twilio verification sent", zap.String("sid", *resp.Sid))
	}
	return nil
}

func (t *Twilio) VerifyCode(ctx context.Context, channel users.Channel, to, code string) (Verification, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(to)
	params.SetCode(code)

	resp, err := t.client.VerifyV2.CreateVerificationCheck(t.serviceSID, params)
	if err != nil {
		return Verification{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	status := ""
	if resp.Status != nil {
		status = *resp.Status
	}
	return Verification{
		Approved:  status == twilioApproved,
		Status:    status,
		SubjectID: fmt.Sprintf("twilio:%s:%s", channel, to),
	}, nil
}
