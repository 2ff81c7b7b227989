package msid

import (
	"fmt"
	"strings"
	"time"
)

// Resolution is the unit of an identifier's offset from its epoch.
type Resolution uint8

const (
	// Unspecified selects Millisecond on encode and length-based inference
	// on decode.
	Unspecified Resolution = iota
	Millisecond
	Second
	Day
)

// Unit sizes in milliseconds.
const (
	msPerSecond = int64(1000)
	msPerDay    = int64(86_400_000)
)

// DayWidth is the fixed length of day-resolution identifiers.
const DayWidth = 4

// UnixEpoch is the default epoch, 1970-01-01T00:00:00Z.
var UnixEpoch = time.UnixMilli(0).UTC()

// String returns the resolution's canonical name.
func (r Resolution) String() string {
	switch r {
	case Unspecified:
		return ""
	case Millisecond:
		return "ms"
	case Second:
		return "second"
	case Day:
		return "day"
	default:
		return fmt.Sprintf("Resolution(%d)", uint8(r))
	}
}

// Valid reports whether r is a known resolution, Unspecified included.
func (r Resolution) Valid() bool {
	return r <= Day
}

// Unit returns the resolution's size in milliseconds. Unspecified counts
// as Millisecond.
func (r Resolution) Unit() int64 {
	switch r {
	case Second:
		return msPerSecond
	case Day:
		return msPerDay
	default:
		return 1
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Resolution) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resolution) UnmarshalText(text []byte) error {
	parsed, err := ParseResolution(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseResolution parses a resolution name. The empty string yields
// Unspecified.
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unspecified, nil
	case "ms", "millisecond", "milliseconds":
		return Millisecond, nil
	case "s", "sec", "second", "seconds":
		return Second, nil
	case "d", "day", "days":
		return Day, nil
	default:
		return Unspecified, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
}

// Config selects the epoch, alphabet and resolution of an identifier.
// Zero fields take the defaults: UnixEpoch, DefaultAlphabet and, on encode,
// Millisecond. The zero time.Time therefore cannot be used as an epoch.
type Config struct {
	Epoch      time.Time
	Alphabet   string
	Resolution Resolution
}

// Validate checks the alphabet and resolution of c.
func (c Config) Validate() error {
	if !c.Resolution.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidResolution, uint8(c.Resolution))
	}
	if c.Alphabet != "" {
		return ValidateAlphabet(c.Alphabet)
	}
	return nil
}

// IsDefault reports whether c resolves to the Unix epoch and the default
// alphabet.
func (c Config) IsDefault() bool {
	return c.epochMillis() == 0 && c.alphabet() == DefaultAlphabet
}

// Equal reports whether c and o resolve to the same configuration. Epochs
// are compared by instant at millisecond precision.
func (c Config) Equal(o Config) bool {
	return c.epochMillis() == o.epochMillis() &&
		c.alphabet() == o.alphabet() &&
		c.encodeResolution() == o.encodeResolution()
}

func (c Config) epochMillis() int64 {
	if c.Epoch.IsZero() {
		return 0
	}
	return c.Epoch.UnixMilli()
}

func (c Config) alphabet() string {
	if c.Alphabet == "" {
		return DefaultAlphabet
	}
	return c.Alphabet
}

func (c Config) encodeResolution() Resolution {
	if c.Resolution == Unspecified {
		return Millisecond
	}
	return c.Resolution
}

// InferResolution guesses the resolution of id from its length: 7 symbols
// is Millisecond, 6 is Second, 3 or 4 is Day and anything else falls back
// to Millisecond. The widths are those of the default alphabet and epoch
// for present-day times; with other alphabets or epochs pass the resolution
// explicitly.
func InferResolution(id string) Resolution {
	switch len(id) {
	case 7:
		return Millisecond
	case 6:
		return Second
	case 3, DayWidth:
		return Day
	default:
		return Millisecond
	}
}
