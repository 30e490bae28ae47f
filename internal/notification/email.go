// Package notification sends deal alerts to configured recipients.
package notification

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"flipfinder/config"
	"flipfinder/internal/models"
)

// Sender abstracts the SMTP dialer so tests can capture messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service struct {
	logger *logrus.Logger
	config config.SMTPConfig
	sender Sender
}

func NewService(cfg config.SMTPConfig, logger *logrus.Logger) *Service {
	s := &Service{
		logger: logger,
		config: cfg,
	}
	if cfg.Host != "" {
		s.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// SetSender replaces the SMTP dialer.
func (s *Service) SetSender(sender Sender) {
	s.sender = sender
}

// IsEnabled reports whether the service has an SMTP host and at least
// one recipient configured.
func (s *Service) IsEnabled() bool {
	return s.sender != nil && len(s.config.Recipients) > 0
}

// SendDealAlert emails the top deals to the configured recipients. A
// disabled service drops the alert silently so pipelines can always
// call it.
func (s *Service) SendDealAlert(deals []*models.Deal, limit int) error {
	if !s.IsEnabled() {
		s.logger.Debug("Email notifications disabled, skipping deal alert")
		return nil
	}
	if len(deals) == 0 {
		return nil
	}
	if limit > 0 && len(deals) > limit {
		deals = deals[:limit]
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", s.config.Recipients...)
	m.SetHeader("Subject", fmt.Sprintf("Flip Finder: %d deals found", len(deals)))
	m.SetBody("text/html", buildDealTable(deals))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send deal alert: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"deals":      len(deals),
		"recipients": len(s.config.Recipients),
	}).Info("Sent deal alert email")
	return nil
}

func buildDealTable(deals []*models.Deal) string {
	var b strings.Builder
	b.WriteString("<h2>Top Flip Candidates</h2>")
	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Score</th><th>Address</th><th>List Price</th><th>ARV</th><th>Repairs</th><th>Profit</th><th>ROI</th><th>70% Rule</th></tr>")

	for _, deal := range deals {
		rule := "No"
		if deal.Meets70PercentRule {
			rule = "Yes"
		}
		fmt.Fprintf(&b,
			"<tr><td>%.1f</td><td>%s</td><td>$%.0f</td><td>$%.0f</td><td>$%.0f</td><td>$%.0f</td><td>%.1f%%</td><td>%s</td></tr>",
			deal.Score,
			deal.Address,
			deal.ListPrice,
			deal.ARV,
			deal.RepairCosts,
			deal.PotentialProfit,
			deal.ROI,
			rule,
		)
	}

	b.WriteString("</table>")
	return b.String()
}
