package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/Domenick1991/goaero/config"
	"github.com/Domenick1991/goaero/internal/domain"
	"github.com/Domenick1991/goaero/internal/kafka"
)

// Sender turns booking events into notification mail. Without an SMTP host
// it only logs what it would have sent.
type Sender struct {
	cfg    config.SMTPConfig
	client *mail.Client
	log    *slog.Logger
}

func NewSender(cfg config.SMTPConfig) (*Sender, error) {
	s := &Sender{cfg: cfg, log: slog.Default().With("component", "email")}
	if cfg.Host == "" {
		return s, nil
	}

	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		return nil
	}
	subject, body := Compose(event)

	if s.client == nil {
		s.log.Info("notification", "to", event.Email, "subject", subject)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(event.Email); err != nil {
		// A bad recipient never becomes deliverable; drop the event.
		s.log.Warn("skip notification", "to", event.Email, "error", err)
		return nil
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification for %s: %w", event.PNR, err)
	}
	return nil
}

// Compose renders the subject and plain-text body for an event.
func Compose(event kafka.BookingEvent) (string, string) {
	var subject string
	switch event.Type {
	case kafka.EventBookingCreated:
		subject = fmt.Sprintf("Booking %s confirmed", event.PNR)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking %s cancelled", event.PNR)
	case kafka.EventPaymentUpdated:
		subject = fmt.Sprintf("Payment for booking %s: %s", event.PNR, strings.ToLower(event.PaymentStatus))
	default:
		subject = fmt.Sprintf("Booking %s updated", event.PNR)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Booking reference: %s\n", event.PNR)
	fmt.Fprintf(&b, "Status: %s\n", event.Status)
	fmt.Fprintf(&b, "Payment: %s\n", event.PaymentStatus)
	fmt.Fprintf(&b, "Amount: %s\n", domain.FormatCents(event.AmountCents))
	if !event.DepartureTime.IsZero() {
		fmt.Fprintf(&b, "Departure: %s\n", event.DepartureTime.UTC().Format("2006-01-02 15:04 MST"))
	}
	return subject, b.String()
}
