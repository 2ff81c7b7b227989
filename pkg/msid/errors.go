package msid

import "errors"

// Codec errors. They are returned wrapped with call details, so compare
// with errors.Is.
var (
	// ErrInvalidCharacter is returned when decoding meets a symbol that is
	// not part of the effective alphabet.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrEpochViolation is returned when encoding a time before the epoch.
	ErrEpochViolation = errors.New("time is before epoch")

	// ErrInvalidAlphabet is returned for alphabets shorter than two symbols,
	// longer than 256 symbols or containing duplicate symbols.
	ErrInvalidAlphabet = errors.New("invalid alphabet")

	// ErrInvalidResolution is returned for an unknown resolution value or name.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrEmptyIdentifier is returned when decoding an empty string.
	ErrEmptyIdentifier = errors.New("cannot decode empty identifier")

	// ErrOverflow is returned when a decoded offset does not fit in 64 bits
	// or the decoded instant falls outside the int64 millisecond range.
	ErrOverflow = errors.New("offset overflows 64-bit range")

	// ErrUnknownRequest is returned by Codec.Do for an unrecognized request kind.
	ErrUnknownRequest = errors.New("unknown request kind")
)
