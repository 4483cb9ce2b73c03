// Package statsd emits StatsD lines over UDP for the auth endpoints.
// Counters and timings are the only metric kinds the handlers produce, so
// the client carries nothing else. A nil *Client is a valid no-op sink.
package statsd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const dialTimeout = 5 * time.Second

// Config describes the StatsD endpoint to emit to.
type Config struct {
	Address string
	// Prefix is prepended to every metric name, dot separated.
	Prefix string
	Logger *slog.Logger
}

// Client writes StatsD lines over a single UDP connection. Safe for
// concurrent use. Emission is fire-and-forget: write failures are logged at
// debug level and never surface to callers.
type Client struct {
	prefix string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

// NewClient dials the StatsD endpoint. Callers that want metrics off simply
// hold a nil *Client instead.
func NewClient(cfg Config) (*Client, error) {
	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return nil, errors.New("statsd address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}

	return &Client{
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		logger: logger,
		conn:   conn,
	}, nil
}

// Count increments a counter metric.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.emit(name, strconv.FormatInt(value, 10)+"|c", tags)
}

// Timing records a duration metric in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.emit(name, strconv.FormatFloat(ms, 'f', -1, 64)+"|ms", tags)
}

// Close releases the UDP connection. Further emissions become no-ops.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) emit(name, payload string, tags map[string]string) {
	if c == nil || name == "" {
		return
	}

	metric := name
	if c.prefix != "" {
		metric = c.prefix + "." + name
	}
	line := metric + ":" + payload + tagSuffix(tags)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.logger.Debug("statsd write failed", "metric", metric, "error", err)
	}
}

// tagSuffix renders tags in the DogStatsD form "|#k:v,k:v", keys sorted so
// emitted lines are deterministic.
func tagSuffix(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+tags[k])
	}
	return "|#" + strings.Join(parts, ",")
}
