// Package email sends the weekly pipeline digest over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	"dealflow_backend/internal/deals/domain"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"

	gomail "github.com/wneessen/go-mail"
)

// DealReader is the read surface the digest needs.
type DealReader interface {
	List(ctx context.Context, includeArchived bool) ([]repository.Deal, error)
}

// Digest builds and sends the pipeline digest email.
type Digest struct {
	cfg    config.EmailConfig
	reader DealReader
	log    *logger.Logger
}

// NewDigest creates the digest sender.
func NewDigest(cfg config.EmailConfig, reader DealReader, log *logger.Logger) *Digest {
	return &Digest{cfg: cfg, reader: reader, log: log}
}

type digestDeal struct {
	Brand      string
	Stage      string
	NextAction string
	DaysLate   int
}

type digestData struct {
	Date          string
	ActiveDeals   int
	PipelineValue int
	WaitingOnUs   int
	Overdue       []digestDeal
}

var digestTemplate = template.Must(template.New("digest").Parse(`
<h2>Pipeline digest - {{.Date}}</h2>
<p>{{.ActiveDeals}} active deals worth ${{.PipelineValue}}. {{.WaitingOnUs}} waiting on us.</p>
{{if .Overdue}}
<h3>Overdue next actions</h3>
<ul>
{{range .Overdue}}<li><strong>{{.Brand}}</strong> ({{.Stage}}): {{.NextAction}} - {{.DaysLate}} days late</li>
{{end}}</ul>
{{else}}<p>Nothing overdue. Nice.</p>{{end}}
`))

// SendPipelineDigest assembles the current pipeline summary and emails it to
// the configured recipient.
func (d *Digest) SendPipelineDigest(ctx context.Context) error {
	deals, err := d.reader.List(ctx, false)
	if err != nil {
		return fmt.Errorf("digest load deals: %w", err)
	}

	now := time.Now()
	today := now.Truncate(24 * time.Hour)
	data := digestData{Date: now.Format("Jan 2, 2006")}

	for _, deal := range deals {
		data.ActiveDeals++
		if domain.IsEngaged(deal.Stage) {
			data.PipelineValue += domain.AmountFromValue(deal.Value)
		}
		if deal.WaitingOn != nil && *deal.WaitingOn == domain.WaitingOnUs {
			data.WaitingOnUs++
		}
		if deal.NextActionDate != nil && deal.NextActionDate.Before(today) {
			action := ""
			if deal.NextAction != nil {
				action = *deal.NextAction
			}
			data.Overdue = append(data.Overdue, digestDeal{
				Brand:      deal.Brand,
				Stage:      deal.Stage,
				NextAction: action,
				DaysLate:   int(today.Sub(*deal.NextActionDate).Hours() / 24),
			})
		}
	}

	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("digest render: %w", err)
	}

	subject := fmt.Sprintf("Pipeline digest: %d active, %d overdue", data.ActiveDeals, len(data.Overdue))
	if err := d.send(ctx, subject, body.String()); err != nil {
		return err
	}

	d.log.Info("pipeline digest sent", "active", data.ActiveDeals, "overdue", len(data.Overdue))
	return nil
}

func (d *Digest) send(ctx context.Context, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.From(d.cfg.GetEmailFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(d.cfg.GetDigestToAddress()); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(d.cfg.GetSMTPHost(),
		gomail.WithPort(d.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(d.cfg.GetSMTPUsername()),
		gomail.WithPassword(d.cfg.GetSMTPPassword()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
