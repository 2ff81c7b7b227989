package msid

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable(t *testing.T) {
	t.Run("maps symbols to digit indexes", func(t *testing.T) {
		tbl, err := buildTable("0123456789abcdef")
		require.NoError(t, err)

		assert.Equal(t, uint64(16), tbl.base())
		assert.Equal(t, uint16(0), tbl.digits['0'])
		assert.Equal(t, uint16(10), tbl.digits['a'])
		assert.Equal(t, uint16(15), tbl.digits['f'])
	})

	t.Run("marks other bytes invalid", func(t *testing.T) {
		tbl, err := buildTable("01")
		require.NoError(t, err)

		for c := 0; c < 256; c++ {
			if c == '0' || c == '1' {
				continue
			}
			assert.Equal(t, uint16(invalidDigit), tbl.digits[c], "byte %d", c)
		}
	})

	t.Run("default table", func(t *testing.T) {
		assert.Equal(t, uint64(62), defaultTable.base())
		assert.Equal(t, uint16(36), defaultTable.digits['a'])
		assert.Equal(t, uint16(invalidDigit), defaultTable.digits['-'])
	})

	t.Run("accepts all 256 byte values", func(t *testing.T) {
		var b strings.Builder
		for c := 0; c < 256; c++ {
			b.WriteByte(byte(c))
		}
		tbl, err := buildTable(b.String())
		require.NoError(t, err)
		assert.Equal(t, uint64(256), tbl.base())
		assert.Equal(t, uint16(255), tbl.digits[255])
	})
}

func TestValidateAlphabet(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		valid    bool
	}{
		{"default", DefaultAlphabet, true},
		{"binary", "01", true},
		{"hex", "0123456789abcdef", true},
		{"empty", "", false},
		{"single symbol", "a", false},
		{"duplicate symbol", "abca", false},
		{"adjacent duplicate", "aab", false},
		{"too long", strings.Repeat("ab", 129), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlphabet(tt.alphabet)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAlphabet)
			}
		})
	}
}

func TestTableCache(t *testing.T) {
	t.Run("default alphabet is not cached", func(t *testing.T) {
		cache := newTableCache()

		tbl, err := cache.lookup(DefaultAlphabet)
		require.NoError(t, err)
		assert.Same(t, defaultTable, tbl)
		assert.Equal(t, 0, cache.len())
	})

	t.Run("custom alphabet is built once", func(t *testing.T) {
		cache := newTableCache()

		first, err := cache.lookup("0123456789abcdef")
		require.NoError(t, err)
		second, err := cache.lookup("0123456789abcdef")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, cache.len())
	})

	t.Run("invalid alphabet is not cached", func(t *testing.T) {
		cache := newTableCache()

		_, err := cache.lookup("aa")
		assert.ErrorIs(t, err, ErrInvalidAlphabet)
		assert.Equal(t, 0, cache.len())
	})

	t.Run("concurrent lookups share one table", func(t *testing.T) {
		cache := newTableCache()

		var wg sync.WaitGroup
		tables := make([]*table, 50)
		for i := range tables {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tbl, err := cache.lookup("abcdefgh")
				if err == nil {
					tables[i] = tbl
				}
			}(i)
		}
		wg.Wait()

		for _, tbl := range tables {
			assert.Same(t, tables[0], tbl)
		}
		assert.Equal(t, 1, cache.len())
	})
}
