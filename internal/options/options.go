package options

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shepmaster/avr-intel-hex-tool/internal/render"
)

// Mode selects how a document-level decode reacts to a bad line.
type Mode int

const (
	FailFast Mode = iota
	CollectAll
)

func (m Mode) String() string {
	if m == CollectAll {
		return "collect-all"
	}
	return "fail-fast"
}

// DefaultPadding fills holes when an image is flattened or digested.
const DefaultPadding byte = 0xFF

// ParseMode accepts "fail-fast" (the default for an empty string) or
// "collect-all".
func ParseMode(input string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "fail-fast":
		return FailFast, nil
	case "collect-all":
		return CollectAll, nil
	default:
		return FailFast, fmt.Errorf("unknown mode %q (want fail-fast or collect-all)", input)
	}
}

// ParseFormat checks that a renderer exists for the requested format.
func ParseFormat(input string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(input))
	if name == "" {
		name = "text"
	}
	if _, err := render.Lookup(name); err != nil {
		return "", fmt.Errorf("%w (available: %s)", err, strings.Join(render.Names(), ", "))
	}
	return name, nil
}

// ParsePadding validates and decodes a single hex byte such as "FF" or "0x00".
func ParsePadding(input string) (byte, error) {
	clean := strings.Join(strings.Fields(input), "")
	if clean == "" {
		return DefaultPadding, nil
	}
	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
		clean = clean[2:]
	}
	if len(clean) != 2 {
		return 0, fmt.Errorf("padding must be 2 hex digits (1 byte), got %d", len(clean))
	}
	var dst [1]byte
	if _, err := hex.Decode(dst[:], []byte(clean)); err != nil {
		return 0, fmt.Errorf("invalid padding hex: %w", err)
	}
	return dst[0], nil
}

type contextKey struct{}

// WithLogger stores the provided logger inside the context.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, log)
}

// Logger retrieves the logger from context, or nil when none was stored.
func Logger(ctx context.Context) logrus.FieldLogger {
	if v := ctx.Value(contextKey{}); v != nil {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return nil
}
