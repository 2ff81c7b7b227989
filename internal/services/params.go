package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gourl/msid/pkg/msid"
)

// TimeLayout renders decoded instants as RFC 3339 at millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseInstant parses an RFC 3339 timestamp or a count of milliseconds since
// the Unix epoch. The result is in UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTime)
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.UTC(), nil
}

// ParseConfig builds a codec configuration from its textual form. Empty
// fields stay zero so they can be filled from a profile or the defaults.
func ParseConfig(epoch, alphabet, resolution string) (msid.Config, error) {
	var cfg msid.Config
	if epoch != "" {
		t, err := ParseInstant(epoch)
		if err != nil {
			return msid.Config{}, fmt.Errorf("epoch: %w", err)
		}
		cfg.Epoch = t
	}
	if alphabet != "" {
		if err := msid.ValidateAlphabet(alphabet); err != nil {
			return msid.Config{}, err
		}
		cfg.Alphabet = alphabet
	}
	res, err := msid.ParseResolution(resolution)
	if err != nil {
		return msid.Config{}, err
	}
	cfg.Resolution = res
	return cfg, nil
}
