package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/logfields"
)

const (
	// LatestKey holds the most recent notification in the KV bucket.
	LatestKey = "latest"

	defaultStream = "OVERFASTSITE"
	defaultBucket = "overfastsite"
)

type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type kvPutter interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

// NATSNotifier publishes to a JetStream subject and keeps the latest
// notification in a KV bucket.
type NATSNotifier struct {
	conn    *nats.Conn
	js      publisher
	kv      kvPutter
	subject string
	timeout time.Duration
}

// New returns a NATSNotifier when natsURL is set and a NoopNotifier otherwise.
func New(natsURL, subject string) (Notifier, error) {
	if strings.TrimSpace(natsURL) == "" {
		return NoopNotifier{}, nil
	}
	return NewNATSNotifier(natsURL, subject)
}

// NewNATSNotifier connects to natsURL and makes sure a stream captures subject.
func NewNATSNotifier(natsURL, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(natsURL, nats.Name("overfastsite"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, notifyError(err, "connect to NATS", subject)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, notifyError(err, "create JetStream context", subject)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        defaultStream,
		Description: "overfastsite generation runs",
		Subjects:    []string{subject},
		MaxMsgs:     1000,
	}); err != nil {
		conn.Close()
		return nil, notifyError(err, "ensure stream", subject)
	}

	kv, err := js.KeyValue(ctx, defaultBucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      defaultBucket,
			Description: "Latest overfastsite run",
			History:     1,
		})
		if err != nil {
			conn.Close()
			return nil, notifyError(err, "create KV bucket", subject)
		}
	}

	slog.Info("NATS notifier initialized", logfields.URL(natsURL), logfields.Subject(subject))
	return newNATSNotifier(conn, js, kv, subject), nil
}

func newNATSNotifier(conn *nats.Conn, js publisher, kv kvPutter, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, js: js, kv: kv, subject: subject, timeout: 5 * time.Second}
}

// Notify publishes n and records it as the latest run.
func (c *NATSNotifier) Notify(ctx context.Context, n RunNotification) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(n)
	if err != nil {
		return notifyError(err, "marshal notification", c.subject)
	}

	if _, err := c.js.Publish(ctx, c.subject, data, jetstream.WithMsgID(n.RunID)); err != nil {
		return notifyError(err, "publish notification", c.subject)
	}
	if c.kv != nil {
		if _, err := c.kv.Put(ctx, LatestKey, data); err != nil {
			return notifyError(err, "store latest run", c.subject)
		}
	}

	slog.Debug("Published run notification", logfields.RunID(n.RunID), logfields.Subject(c.subject))
	return nil
}

// Close closes the NATS connection.
func (c *NATSNotifier) Close() error {
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
	}
	return nil
}

func notifyError(err error, msg, subject string) error {
	return ferrors.WrapError(err, ferrors.CategoryNotify, msg).
		Warning().
		Retryable().
		WithContext("subject", subject).
		Build()
}
