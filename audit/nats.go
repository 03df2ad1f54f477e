package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject session entries are published on.
const DefaultSubject = "semfibo.audit.session"

// Publisher is the part of *nats.Conn the sink uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes entries as JSON messages.
type NATSSink struct {
	pub     Publisher
	subject string
	conn    *nats.Conn
}

// NewNATSSink publishes through an existing connection.
func NewNATSSink(pub Publisher, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{pub: pub, subject: subject}
}

// DialNATS connects to url and returns a sink that owns the connection.
func DialNATS(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("semfibo-audit"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	s := NewNATSSink(conn, subject)
	s.conn = conn
	return s, nil
}

// Subject returns the publish subject.
func (s *NATSSink) Subject() string {
	return s.subject
}

// Write publishes one entry.
func (s *NATSSink) Write(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish audit entry: %w", err)
	}
	return nil
}

// Close flushes and closes the connection if the sink dialled it.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Flush(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		s.conn.Close()
		return fmt.Errorf("flush NATS: %w", err)
	}
	s.conn.Close()
	return nil
}
