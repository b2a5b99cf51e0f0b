package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nutribridge-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, msg string) error {
	return m.Called(ctx, to, msg).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

func strPtr(s string) *string { return &s }

func TestClaimCreated_TextsAndEmailsDonor(t *testing.T) {
	sms := &mockSMSSender{}
	ml := &mockMailer{}
	sms.On("SendSMS", mock.Anything, "+919876543210", mock.MatchedBy(func(m string) bool {
		return strings.Contains(m, `2 portion(s) of "Rice"`)
	})).Return(nil)
	ml.On("SendEmail", "asha@x.test", "New claim: Rice", mock.Anything).Return(errors.New("smtp down"))

	l := &domain.Listing{Title: "Rice", Donor: domain.Donor{Email: "asha@x.test"}}
	c := &domain.Claim{ClaimID: "C1", DonorPhone: "919876543210", Quantity: 2}
	NewService(sms, ml).ClaimCreated(context.Background(), l, c)

	sms.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestClaimStatusChanged_AcceptedCarriesCode(t *testing.T) {
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+9000000001", `Your claim for "Rice" was accepted. Pickup code: 4821`).
		Return(errors.New("throttled"))

	c := &domain.Claim{ClaimID: "C1", ListingTitle: "Rice", RequesterPhone: "9000000001",
		Status: domain.ClaimAccepted, OTP: strPtr("4821")}
	NewService(sms, nil).ClaimStatusChanged(context.Background(), c)

	sms.AssertExpectations(t)
}

func TestClaimStatusChanged_SkipsWithoutChannelOrPhone(t *testing.T) {
	sms := &mockSMSSender{}
	svc := NewService(sms, nil)
	svc.ClaimStatusChanged(context.Background(), &domain.Claim{Status: domain.ClaimRejected})
	svc.ClaimStatusChanged(context.Background(), &domain.Claim{Status: domain.ClaimCompleted, RequesterPhone: "1"})
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)

	assert.NotPanics(t, func() {
		NewService(nil, nil).ClaimCreated(context.Background(), &domain.Listing{}, &domain.Claim{DonorPhone: "1"})
	})
}
