package notify

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	mail "gopkg.in/mail.v2"

	"tender-scout/config"
	"tender-scout/internal/tender"
)

// Sender delivers one message. Satisfied by mail.Dialer.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Notifier mails a digest of freshly discovered tenders. Delivery failure is
// reported but must never fail the cycle that produced the records.
type Notifier struct {
	cfg    config.SMTPConfig
	sender Sender
	logger *zap.SugaredLogger
}

func New(cfg config.SMTPConfig, logger *zap.SugaredLogger) *Notifier {
	var sender Sender
	if cfg.Enabled && cfg.Host != "" {
		sender = mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	}
	return &Notifier{cfg: cfg, sender: sender, logger: logger}
}

// NewWithSender is for tests.
func NewWithSender(cfg config.SMTPConfig, sender Sender, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{cfg: cfg, sender: sender, logger: logger}
}

func (n *Notifier) NotifyNewTenders(records []tender.Record) error {
	if len(records) == 0 || n.sender == nil {
		return nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", strings.Split(n.cfg.To, ",")...)
	m.SetHeader("Subject", fmt.Sprintf("%d neue Ausschreibungen gefunden", len(records)))
	m.SetBody("text/plain", digestBody(records))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send tender digest: %w", err)
	}

	n.logger.Infow("tender_digest_sent", "count", len(records), "to", n.cfg.To)
	return nil
}

func digestBody(records []tender.Record) string {
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "%s\n", rec.Title)
		fmt.Fprintf(&b, "  Vergabestelle: %s\n", rec.Authority)
		fmt.Fprintf(&b, "  Ort: %s\n", rec.Location)
		fmt.Fprintf(&b, "  Frist: %s\n", rec.Deadline)
		fmt.Fprintf(&b, "  Kategorie: %s\n", rec.Category)
		fmt.Fprintf(&b, "  %s\n\n", rec.SourceURL)
	}
	return b.String()
}
