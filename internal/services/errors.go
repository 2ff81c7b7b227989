package services

import (
	"errors"

	"github.com/gourl/msid/internal/models"
	"github.com/gourl/msid/pkg/msid"
)

// Request validation errors.
var (
	ErrBatchTooLarge = errors.New("requested identifier count exceeds batch limit")
	ErrInvalidCount  = errors.New("identifier count must be positive")
	ErrInvalidTime   = errors.New("invalid time: expected RFC 3339 or unix milliseconds")
)

// Error codes shared by the HTTP and CLI surfaces.
const (
	CodeInvalidCharacter   = "INVALID_CHARACTER"
	CodeEpochViolation     = "EPOCH_VIOLATION"
	CodeInvalidAlphabet    = "INVALID_ALPHABET"
	CodeInvalidResolution  = "INVALID_RESOLUTION"
	CodeOverflow           = "OVERFLOW"
	CodeEmptyID            = "EMPTY_ID"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeProfileExists      = "PROFILE_EXISTS"
	CodeInvalidProfileName = "INVALID_PROFILE_NAME"
	CodeBatchTooLarge      = "BATCH_TOO_LARGE"
	CodeInvalidCount       = "INVALID_COUNT"
	CodeInvalidTime        = "INVALID_TIME"
	CodeInternal           = "INTERNAL_ERROR"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{msid.ErrInvalidCharacter, CodeInvalidCharacter},
	{msid.ErrEpochViolation, CodeEpochViolation},
	{msid.ErrInvalidAlphabet, CodeInvalidAlphabet},
	{msid.ErrInvalidResolution, CodeInvalidResolution},
	{msid.ErrOverflow, CodeOverflow},
	{msid.ErrEmptyIdentifier, CodeEmptyID},
	{models.ErrProfileNotFound, CodeProfileNotFound},
	{models.ErrProfileExists, CodeProfileExists},
	{models.ErrEmptyProfileName, CodeInvalidProfileName},
	{models.ErrInvalidProfileName, CodeInvalidProfileName},
	{ErrBatchTooLarge, CodeBatchTooLarge},
	{ErrInvalidCount, CodeInvalidCount},
	{ErrInvalidTime, CodeInvalidTime},
}

// ErrorCode classifies err into one of the Code constants. Unknown errors
// are CodeInternal.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
