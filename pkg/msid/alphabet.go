package msid

import (
	"fmt"
	"sync"
)

// DefaultAlphabet is the 62-symbol alphabet: digits, then uppercase, then
// lowercase letters. Its byte order matches its digit order, so identifiers
// of equal length sort lexicographically by offset.
const DefaultAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// invalidDigit marks bytes that are not part of an alphabet.
const invalidDigit = 0xffff

// maxAlphabetLen is the number of distinct single-byte symbols.
const maxAlphabetLen = 256

// table maps every byte to its digit index within one alphabet.
type table struct {
	alphabet string
	digits   [256]uint16
}

// base returns the numeric base of the table's alphabet.
func (t *table) base() uint64 {
	return uint64(len(t.alphabet))
}

// defaultTable is built once at package init.
var defaultTable = mustBuildTable(DefaultAlphabet)

// ValidateAlphabet reports whether alphabet can be used for encoding.
// Every byte of the string is one symbol.
func ValidateAlphabet(alphabet string) error {
	_, err := buildTable(alphabet)
	return err
}

// buildTable validates alphabet and builds its lookup table.
func buildTable(alphabet string) (*table, error) {
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 symbols, got %d", ErrInvalidAlphabet, len(alphabet))
	}
	if len(alphabet) > maxAlphabetLen {
		return nil, fmt.Errorf("%w: at most %d symbols allowed, got %d", ErrInvalidAlphabet, maxAlphabetLen, len(alphabet))
	}

	t := &table{alphabet: alphabet}
	for i := range t.digits {
		t.digits[i] = invalidDigit
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if t.digits[c] != invalidDigit {
			return nil, fmt.Errorf("%w: duplicate symbol %q at position %d", ErrInvalidAlphabet, c, i)
		}
		t.digits[c] = uint16(i)
	}
	return t, nil
}

func mustBuildTable(alphabet string) *table {
	t, err := buildTable(alphabet)
	if err != nil {
		panic(err)
	}
	return t
}

// tableCache holds the tables of custom alphabets. Entries are never evicted.
type tableCache struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func newTableCache() *tableCache {
	return &tableCache{tables: make(map[string]*table)}
}

// lookup returns the table for alphabet, building and caching it on first use.
func (c *tableCache) lookup(alphabet string) (*table, error) {
	if alphabet == DefaultAlphabet {
		return defaultTable, nil
	}

	c.mu.RLock()
	t, ok := c.tables[alphabet]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := buildTable(alphabet)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.tables[alphabet]; ok {
		return existing, nil
	}
	c.tables[alphabet] = t
	return t, nil
}

// len returns the number of cached custom tables.
func (c *tableCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
