package msid

import (
	"fmt"
	"math"
)

// maxDigits is the longest base-2 rendering of a uint64.
const maxDigits = 64

// encodeOffset renders offset in the base of alphabet, most significant
// digit first. Zero renders as the alphabet's first symbol.
func encodeOffset(offset uint64, alphabet string) string {
	if offset == 0 {
		return alphabet[:1]
	}

	base := uint64(len(alphabet))
	var buf [maxDigits]byte
	i := len(buf)
	for offset > 0 {
		i--
		buf[i] = alphabet[offset%base]
		offset /= base
	}
	return string(buf[i:])
}

// decodeOffset parses s as a number in the base of t's alphabet.
func decodeOffset(s string, t *table) (uint64, error) {
	if len(s) == 0 {
		return 0, ErrEmptyIdentifier
	}

	base := t.base()
	var offset uint64
	for i := 0; i < len(s); i++ {
		digit := t.digits[s[i]]
		if digit == invalidDigit {
			return 0, fmt.Errorf("%w %q at position %d", ErrInvalidCharacter, s[i], i)
		}
		if offset > (math.MaxUint64-uint64(digit))/base {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
		}
		offset = offset*base + uint64(digit)
	}
	return offset, nil
}

// padLeft left-pads id to width with the alphabet's zero symbol.
func padLeft(id string, width int, alphabet string) string {
	if len(id) >= width {
		return id
	}
	buf := make([]byte, width)
	n := width - len(id)
	zero := alphabet[0]
	for i := 0; i < n; i++ {
		buf[i] = zero
	}
	copy(buf[n:], id)
	return string(buf)
}
