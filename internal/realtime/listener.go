package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// PGListener holds a dedicated connection LISTENing on channel and publishes
// decoded notifications to the hub. It reconnects until its context ends.
type PGListener struct {
	url     string
	channel string
	hub     *Hub
	logger  *slog.Logger
}

func NewPGListener(url, channel string, hub *Hub, logger *slog.Logger) *PGListener {
	return &PGListener{url: url, channel: channel, hub: hub, logger: logger}
}

// Run blocks until ctx is canceled.
func (l *PGListener) Run(ctx context.Context) error {
	var delay time.Duration
	for {
		listened, err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		delay = retryDelay(delay, listened)
		l.logger.Warn("change listener disconnected", "channel", l.channel, "error", err, "retry_in", delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// retryDelay is the wait before reconnecting. It doubles across consecutive
// failed attempts and starts over once a connection got as far as LISTEN.
func retryDelay(last time.Duration, listened bool) time.Duration {
	if listened || last == 0 {
		return minBackoff
	}
	return min(last*2, maxBackoff)
}

// listen reports whether LISTEN succeeded before the connection was lost.
func (l *PGListener) listen(ctx context.Context) (bool, error) {
	conn, err := pgx.Connect(ctx, l.url)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}
	l.logger.Info("listening for changes", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, err
		}
		c, err := decodePayload(n.Payload)
		if err != nil {
			l.logger.Warn("dropping malformed notification", "payload", n.Payload, "error", err)
			continue
		}
		l.hub.Publish(c)
	}
}

func decodePayload(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, err
	}
	if c.Table == "" {
		return Change{}, errors.New("missing table")
	}
	c.At = time.Now().UTC()
	return c, nil
}
