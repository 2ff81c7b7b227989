package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gourl/msid/internal/metrics"
	"github.com/gourl/msid/internal/models"
	"github.com/gourl/msid/internal/repository"
	"github.com/gourl/msid/pkg/msid"
)

// DefaultMaxBatch bounds MintRequest.Count when no limit is configured.
const DefaultMaxBatch = 1000

// MintRequest asks for Count identifiers. The configuration is taken from
// the named Profile, if any, and non-zero Config fields override it. A nil
// At encodes the current time.
type MintRequest struct {
	Profile string
	Config  msid.Config
	At      *time.Time
	Count   int
}

// MintResponse holds freshly encoded identifiers in increasing order.
type MintResponse struct {
	IDs        []string
	Resolution msid.Resolution
	Profile    string
}

// InspectRequest asks for the time encoded in ID.
type InspectRequest struct {
	ID      string
	Profile string
	Config  msid.Config
}

// InspectResponse describes a decoded identifier.
type InspectResponse struct {
	ID         string
	Time       time.Time
	UnixMilli  int64
	Resolution msid.Resolution
	Inferred   bool
}

// IDService defines the interface for encoding and decoding identifiers.
type IDService interface {
	Mint(ctx context.Context, req MintRequest) (*MintResponse, error)
	Inspect(ctx context.Context, req InspectRequest) (*InspectResponse, error)
}

var _ IDService = (*IDServiceImpl)(nil)

// UsageRecorder receives the number of identifiers minted under a profile.
type UsageRecorder interface {
	RecordMint(profile string, n int)
}

// IDServiceImpl implements IDService on top of a msid.Codec.
type IDServiceImpl struct {
	codec    *msid.Codec
	profiles repository.ProfileRepository
	usage    UsageRecorder
	defaults msid.Config
	maxBatch int
}

// IDServiceOption configures an IDServiceImpl.
type IDServiceOption func(*IDServiceImpl)

// WithProfiles enables profile lookups.
func WithProfiles(repo repository.ProfileRepository) IDServiceOption {
	return func(s *IDServiceImpl) {
		s.profiles = repo
	}
}

// WithUsage reports identifiers minted under a named profile to rec.
func WithUsage(rec UsageRecorder) IDServiceOption {
	return func(s *IDServiceImpl) {
		s.usage = rec
	}
}

// WithDefaults sets the configuration used when a request names no profile.
func WithDefaults(cfg msid.Config) IDServiceOption {
	return func(s *IDServiceImpl) {
		s.defaults = cfg
	}
}

// WithMaxBatch bounds MintRequest.Count.
func WithMaxBatch(n int) IDServiceOption {
	return func(s *IDServiceImpl) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// NewIDService creates a new IDService using codec.
func NewIDService(codec *msid.Codec, opts ...IDServiceOption) *IDServiceImpl {
	if codec == nil {
		codec = msid.Default()
	}
	s := &IDServiceImpl{
		codec:    codec,
		maxBatch: DefaultMaxBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint encodes req.Count identifiers.
func (s *IDServiceImpl) Mint(ctx context.Context, req MintRequest) (*MintResponse, error) {
	count := req.Count
	switch {
	case count == 0:
		count = 1
	case count < 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	case count > s.maxBatch:
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, count, s.maxBatch)
	}

	cfg, err := s.resolve(ctx, req.Profile, req.Config)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, count)
	for range count {
		var id string
		if req.At != nil {
			id, err = s.codec.Encode(*req.At, cfg)
		} else {
			id, err = s.codec.Generate(cfg)
		}
		if err != nil {
			metrics.RecordCodecError("encode", ErrorCode(err))
			return nil, err
		}
		ids = append(ids, id)
	}

	resolution := cfg.Resolution
	if resolution == msid.Unspecified {
		resolution = msid.Millisecond
	}
	metrics.RecordMinted(resolution.String(), len(ids))
	if s.usage != nil && req.Profile != "" {
		s.usage.RecordMint(req.Profile, len(ids))
	}

	return &MintResponse{
		IDs:        ids,
		Resolution: resolution,
		Profile:    req.Profile,
	}, nil
}

// Inspect decodes req.ID.
func (s *IDServiceImpl) Inspect(ctx context.Context, req InspectRequest) (*InspectResponse, error) {
	cfg, err := s.resolve(ctx, req.Profile, req.Config)
	if err != nil {
		return nil, err
	}

	decoded, err := s.codec.Parse(req.ID, cfg)
	if err != nil {
		metrics.RecordCodecError("decode", ErrorCode(err))
		return nil, err
	}
	metrics.RecordDecoded(decoded.Resolution.String(), decoded.Inferred)

	return &InspectResponse{
		ID:         req.ID,
		Time:       decoded.Time,
		UnixMilli:  decoded.Time.UnixMilli(),
		Resolution: decoded.Resolution,
		Inferred:   decoded.Inferred,
	}, nil
}

// resolve picks the base configuration (profile or service defaults) and
// overlays the non-zero fields of override.
func (s *IDServiceImpl) resolve(ctx context.Context, profile string, override msid.Config) (msid.Config, error) {
	cfg := s.defaults
	if profile != "" {
		if s.profiles == nil {
			return msid.Config{}, fmt.Errorf("%w: %s", models.ErrProfileNotFound, profile)
		}
		p, err := s.profiles.GetByName(ctx, profile)
		if err != nil {
			return msid.Config{}, err
		}
		cfg = p.Config()
	}

	if !override.Epoch.IsZero() {
		cfg.Epoch = override.Epoch
	}
	if override.Alphabet != "" {
		cfg.Alphabet = override.Alphabet
	}
	if override.Resolution != msid.Unspecified {
		cfg.Resolution = override.Resolution
	}

	if err := cfg.Validate(); err != nil {
		return msid.Config{}, err
	}
	return cfg, nil
}
