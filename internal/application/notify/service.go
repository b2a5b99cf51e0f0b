package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nutribridge-api/internal/domain"
)

// Service tells donors and requesters about claim activity. Delivery is best
// effort: failures are logged and never returned to the caller.
type Service interface {
	ClaimCreated(ctx context.Context, l *domain.Listing, c *domain.Claim)
	ClaimStatusChanged(ctx context.Context, c *domain.Claim)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	sms    smsSender
	mailer mailer
}

// NewService wires the delivery channels. Either may be nil to disable it.
func NewService(sms smsSender, m mailer) Service {
	return &service{sms: sms, mailer: m}
}

func (s *service) ClaimCreated(ctx context.Context, l *domain.Listing, c *domain.Claim) {
	who := c.RequesterName
	if who == "" {
		who = "Someone"
	}
	msg := fmt.Sprintf("%s requested %d portion(s) of %q. Open your inbox to accept or reject.", who, c.Quantity, l.Title)
	s.text(ctx, c.DonorPhone, msg, "claim_id", c.ClaimID)
	if s.mailer != nil && l.Donor.Email != "" {
		if err := s.mailer.SendEmail(l.Donor.Email, "New claim: "+l.Title, msg); err != nil {
			slog.Warn("claim email failed", "claim_id", c.ClaimID, "err", err)
		}
	}
}

func (s *service) ClaimStatusChanged(ctx context.Context, c *domain.Claim) {
	var msg string
	switch c.Status {
	case domain.ClaimAccepted:
		if c.OTP == nil {
			return
		}
		msg = fmt.Sprintf("Your claim for %q was accepted. Pickup code: %s", c.ListingTitle, *c.OTP)
	case domain.ClaimRejected:
		msg = fmt.Sprintf("Your claim for %q was declined.", c.ListingTitle)
	default:
		return
	}
	s.text(ctx, c.RequesterPhone, msg, "claim_id", c.ClaimID)
}

// text sends an SMS to a digits-only phone key.
func (s *service) text(ctx context.Context, digits, msg string, logArgs ...any) {
	if s.sms == nil || digits == "" {
		return
	}
	if err := s.sms.SendSMS(ctx, "+"+digits, msg); err != nil {
		slog.Warn("sms failed", append(logArgs, "err", err)...)
	}
}
