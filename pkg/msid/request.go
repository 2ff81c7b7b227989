package msid

import (
	"fmt"
	"time"
)

// Kind selects the operation of a Request.
type Kind uint8

const (
	// KindGenerate encodes the current time.
	KindGenerate Kind = iota + 1
	// KindEncode encodes Request.Time.
	KindEncode
	// KindDecode decodes Request.ID.
	KindDecode
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindGenerate:
		return "generate"
	case KindEncode:
		return "encode"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Request is a single codec operation. Build one with GenerateRequest,
// EncodeRequest or DecodeRequest.
type Request struct {
	Kind   Kind
	Time   time.Time
	ID     string
	Config Config
}

// Result holds the output of a Request: ID for the encode kinds, Time (and
// the decoding details) for KindDecode.
type Result struct {
	ID      string
	Time    time.Time
	Decoded *Decoded
}

// GenerateRequest encodes the current time with cfg.
func GenerateRequest(cfg Config) Request {
	return Request{Kind: KindGenerate, Config: cfg}
}

// EncodeRequest encodes t with cfg.
func EncodeRequest(t time.Time, cfg Config) Request {
	return Request{Kind: KindEncode, Time: t, Config: cfg}
}

// DecodeRequest decodes id with cfg.
func DecodeRequest(id string, cfg Config) Request {
	return Request{Kind: KindDecode, ID: id, Config: cfg}
}

// Do runs req.
func (c *Codec) Do(req Request) (Result, error) {
	switch req.Kind {
	case KindGenerate:
		id, err := c.Generate(req.Config)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: id}, nil
	case KindEncode:
		id, err := c.Encode(req.Time, req.Config)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: id}, nil
	case KindDecode:
		d, err := c.Parse(req.ID, req.Config)
		if err != nil {
			return Result{}, err
		}
		return Result{Time: d.Time, Decoded: &d}, nil
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownRequest, req.Kind)
	}
}
