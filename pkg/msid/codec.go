package msid

import (
	"fmt"
	"math"
	"time"
)

// Codec encodes times into short sortable identifiers and decodes them back.
// It owns the monotonicity state and the custom alphabet tables, so
// independent Codecs never influence each other. A Codec is safe for
// concurrent use.
type Codec struct {
	tables  *tableCache
	tracker *tracker
	now     func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces the clock used by Generate.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Codec with empty monotonicity state.
func New(opts ...Option) *Codec {
	c := &Codec{
		tables:  newTableCache(),
		tracker: newTracker(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decoded describes a decoded identifier.
type Decoded struct {
	Time       time.Time
	Offset     uint64
	Resolution Resolution
	// Inferred is set when Resolution was guessed from the identifier length.
	Inferred bool
}

// Generate encodes the current time.
func (c *Codec) Generate(cfg Config) (string, error) {
	return c.Encode(c.now(), cfg)
}

// Encode encodes t. Successive calls with an equal configuration return
// strictly increasing identifiers, even for equal or decreasing times.
// Day-resolution identifiers are padded to DayWidth symbols.
func (c *Codec) Encode(t time.Time, cfg Config) (string, error) {
	if !cfg.Resolution.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidResolution, uint8(cfg.Resolution))
	}

	epochMs := cfg.epochMillis()
	alphabet := cfg.alphabet()
	resolution := cfg.encodeResolution()

	tbl, err := c.tables.lookup(alphabet)
	if err != nil {
		return "", err
	}

	ms := t.UnixMilli()
	if epochMs < 0 && ms > math.MaxInt64+epochMs {
		return "", fmt.Errorf("%w: %s", ErrOverflow, t.UTC().Format(time.RFC3339Nano))
	}
	delta := ms - epochMs
	if delta < 0 {
		return "", fmt.Errorf("%w: %s is before %s", ErrEpochViolation,
			t.UTC().Format(time.RFC3339Nano), time.UnixMilli(epochMs).UTC().Format(time.RFC3339Nano))
	}

	raw := uint64(delta / resolution.Unit())
	offset := c.tracker.next(trackerKey{
		epochMs:    epochMs,
		alphabet:   alphabet,
		resolution: resolution,
	}, raw)

	id := encodeOffset(offset, tbl.alphabet)
	if resolution == Day {
		id = padLeft(id, DayWidth, tbl.alphabet)
	}
	return id, nil
}

// Decode returns the time encoded in id.
func (c *Codec) Decode(id string, cfg Config) (time.Time, error) {
	d, err := c.Parse(id, cfg)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

// Parse decodes id and reports the offset and resolution it used. When
// cfg.Resolution is Unspecified the resolution is inferred from the length
// of id, see InferResolution.
func (c *Codec) Parse(id string, cfg Config) (Decoded, error) {
	if !cfg.Resolution.Valid() {
		return Decoded{}, fmt.Errorf("%w: %d", ErrInvalidResolution, uint8(cfg.Resolution))
	}

	tbl, err := c.tables.lookup(cfg.alphabet())
	if err != nil {
		return Decoded{}, err
	}

	resolution, inferred := cfg.Resolution, false
	if resolution == Unspecified {
		resolution, inferred = InferResolution(id), true
	}

	offset, err := decodeOffset(id, tbl)
	if err != nil {
		return Decoded{}, err
	}

	unit := resolution.Unit()
	if offset > uint64(math.MaxInt64/unit) {
		return Decoded{}, fmt.Errorf("%w: %q", ErrOverflow, id)
	}
	delta := int64(offset) * unit
	epochMs := cfg.epochMillis()
	if epochMs > 0 && delta > math.MaxInt64-epochMs {
		return Decoded{}, fmt.Errorf("%w: %q", ErrOverflow, id)
	}

	return Decoded{
		Time:       time.UnixMilli(epochMs + delta).UTC(),
		Offset:     offset,
		Resolution: resolution,
		Inferred:   inferred,
	}, nil
}

// Reset forgets all monotonicity state. Cached alphabet tables are kept.
func (c *Codec) Reset() {
	c.tracker.reset()
}

var defaultCodec = New()

// Default returns the process-wide Codec used by the package-level functions.
func Default() *Codec {
	return defaultCodec
}

// Generate encodes the current time with the default configuration.
func Generate() (string, error) {
	return defaultCodec.Generate(Config{})
}

// GenerateWith encodes the current time with cfg.
func GenerateWith(cfg Config) (string, error) {
	return defaultCodec.Generate(cfg)
}

// Encode encodes t with the default Codec. At most one Config is used.
func Encode(t time.Time, cfg ...Config) (string, error) {
	return defaultCodec.Encode(t, firstConfig(cfg))
}

// Decode decodes id with the default Codec. At most one Config is used.
func Decode(id string, cfg ...Config) (time.Time, error) {
	return defaultCodec.Decode(id, firstConfig(cfg))
}

func firstConfig(cfg []Config) Config {
	if len(cfg) == 0 {
		return Config{}
	}
	return cfg[0]
}
