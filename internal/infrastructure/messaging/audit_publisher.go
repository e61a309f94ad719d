package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"issuetracker/internal/domain/issue"
	"issuetracker/internal/errs"
	"issuetracker/internal/ports"
)

const DefaultAuditSubject = "issues.audit"

type publisherConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSAuditPublisher publishes persisted audit entries as JSON on one subject.
type NATSAuditPublisher struct {
	conn    publisherConn
	subject string
}

var _ ports.AuditPublisher = (*NATSAuditPublisher)(nil)

func NewNATSAuditPublisher(url string, subject string) (*NATSAuditPublisher, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("nats url is required")
	}

	conn, err := nats.Connect(url,
		nats.Name("issuetracker-audit"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %q", url)
	}
	return newAuditPublisher(conn, subject), nil
}

func newAuditPublisher(conn publisherConn, subject string) *NATSAuditPublisher {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultAuditSubject
	}
	return &NATSAuditPublisher{conn: conn, subject: subject}
}

func (p *NATSAuditPublisher) PublishAudit(ctx context.Context, entry issue.AuditEntry) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errs.Wrap(err, "encode audit entry")
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errs.Wrapf(err, "publish audit entry to %q", p.subject)
	}
	return nil
}

func (p *NATSAuditPublisher) Subject() string {
	return p.subject
}

// Close flushes pending messages and closes the connection.
func (p *NATSAuditPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// NoopAuditPublisher drops every entry. It is used when no broker is configured.
type NoopAuditPublisher struct{}

var _ ports.AuditPublisher = NoopAuditPublisher{}

func (NoopAuditPublisher) PublishAudit(context.Context, issue.AuditEntry) error {
	return nil
}
