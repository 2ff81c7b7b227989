package msid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeOffset(t *testing.T) {
	tests := []struct {
		name     string
		offset   uint64
		alphabet string
		expected string
	}{
		{
			name:     "zero",
			offset:   0,
			alphabet: DefaultAlphabet,
			expected: "0",
		},
		{
			name:     "single digit",
			offset:   9,
			alphabet: DefaultAlphabet,
			expected: "9",
		},
		{
			name:     "ten encodes to A",
			offset:   10,
			alphabet: DefaultAlphabet,
			expected: "A",
		},
		{
			name:     "36 encodes to a",
			offset:   36,
			alphabet: DefaultAlphabet,
			expected: "a",
		},
		{
			name:     "61 encodes to z",
			offset:   61,
			alphabet: DefaultAlphabet,
			expected: "z",
		},
		{
			name:     "62 encodes to 10",
			offset:   62,
			alphabet: DefaultAlphabet,
			expected: "10",
		},
		{
			name:     "62 cubed",
			offset:   238328,
			alphabet: DefaultAlphabet,
			expected: "1000",
		},
		{
			name:     "max uint64",
			offset:   math.MaxUint64,
			alphabet: DefaultAlphabet,
			expected: "LygHa16AHYF",
		},
		{
			name:     "binary",
			offset:   5,
			alphabet: "01",
			expected: "101",
		},
		{
			name:     "hex",
			offset:   255,
			alphabet: "0123456789abcdef",
			expected: "ff",
		},
		{
			name:     "zero uses first symbol of custom alphabet",
			offset:   0,
			alphabet: "xyz",
			expected: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, encodeOffset(tt.offset, tt.alphabet))
		})
	}
}

func TestDecodeOffset(t *testing.T) {
	hex := mustBuildTable("0123456789abcdef")

	tests := []struct {
		name      string
		input     string
		table     *table
		expected  uint64
		expectErr error
	}{
		{
			name:     "zero",
			input:    "0",
			table:    defaultTable,
			expected: 0,
		},
		{
			name:     "leading zeros are ignored",
			input:    "0010",
			table:    defaultTable,
			expected: 62,
		},
		{
			name:     "uppercase A",
			input:    "A",
			table:    defaultTable,
			expected: 10,
		},
		{
			name:     "lowercase z",
			input:    "z",
			table:    defaultTable,
			expected: 61,
		},
		{
			name:     "max uint64",
			input:    "LygHa16AHYF",
			table:    defaultTable,
			expected: math.MaxUint64,
		},
		{
			name:     "hex",
			input:    "19802dd03ad",
			table:    hex,
			expected: 1752394695597,
		},
		{
			name:      "invalid character underscore",
			input:     "abc_def",
			table:     defaultTable,
			expectErr: ErrInvalidCharacter,
		},
		{
			name:      "symbol outside custom alphabet",
			input:     "19802DD03AD",
			table:     hex,
			expectErr: ErrInvalidCharacter,
		},
		{
			name:      "non ascii byte",
			input:     "ab\xffc",
			table:     defaultTable,
			expectErr: ErrInvalidCharacter,
		},
		{
			name:      "empty",
			input:     "",
			table:     defaultTable,
			expectErr: ErrEmptyIdentifier,
		},
		{
			name:      "one past max uint64",
			input:     "LygHa16AHYG",
			table:     defaultTable,
			expectErr: ErrOverflow,
		},
		{
			name:      "far too long",
			input:     "zzzzzzzzzzzz",
			table:     defaultTable,
			expectErr: ErrOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := decodeOffset(tt.input, tt.table)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDecodeOffset_ErrorNamesSymbol(t *testing.T) {
	_, err := decodeOffset("ab-c", defaultTable)
	require.ErrorIs(t, err, ErrInvalidCharacter)
	assert.Contains(t, err.Error(), `'-'`)
	assert.Contains(t, err.Error(), "position 2")
}

func TestEncodeDecodeOffsetRoundTrip(t *testing.T) {
	alphabets := []string{DefaultAlphabet, "01", "0123456789abcdef", "zyx"}
	offsets := []uint64{0, 1, 2, 61, 62, 63, 1000, 1752394695597, math.MaxUint32, math.MaxUint64}

	for _, alphabet := range alphabets {
		tbl := mustBuildTable(alphabet)
		for _, offset := range offsets {
			encoded := encodeOffset(offset, alphabet)
			require.NotEmpty(t, encoded)

			decoded, err := decodeOffset(encoded, tbl)
			require.NoError(t, err, "alphabet %q offset %d", alphabet, offset)
			assert.Equal(t, offset, decoded, "alphabet %q", alphabet)
		}
	}
}

func TestEncodeOffset_PreservesOrder(t *testing.T) {
	// Equal-length identifiers from DefaultAlphabet sort like their offsets.
	var prev string
	for offset := uint64(238328); offset < 238328+5000; offset++ {
		current := encodeOffset(offset, DefaultAlphabet)
		if prev != "" {
			require.Len(t, current, len(prev))
			assert.Less(t, prev, current)
		}
		prev = current
	}
}

func TestPadLeft(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		width    int
		alphabet string
		expected string
	}{
		{"pads with zero symbol", "5H8", 4, DefaultAlphabet, "05H8"},
		{"pads single digit", "0", 4, DefaultAlphabet, "0000"},
		{"custom zero symbol", "b", 4, "abc", "aaab"},
		{"already wide enough", "12345", 4, DefaultAlphabet, "12345"},
		{"exact width", "1234", 4, DefaultAlphabet, "1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, padLeft(tt.id, tt.width, tt.alphabet))
		})
	}
}
