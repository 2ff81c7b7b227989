// Package msid encodes points in time as short, lexicographically sortable
// base-N identifiers and decodes them back.
//
// # Format
//
// An identifier is the offset between a time and an epoch, measured in a
// resolution unit (milliseconds, seconds or days) and written in the base of
// an alphabet, most significant digit first. With the defaults (Unix epoch,
// the 62-symbol DefaultAlphabet, millisecond resolution) present-day
// identifiers are 7 symbols long:
//
//	id, _ := msid.Encode(time.Date(2025, 7, 13, 8, 18, 15, 597e6, time.UTC)) // "UqofYU9"
//	t, _ := msid.Decode("UqofYU9")                                          // 2025-07-13T08:18:15.597Z
//
// Day-resolution identifiers are always padded to 4 symbols.
//
// # Monotonicity
//
// A Codec remembers the last offset it emitted for every configuration and
// never emits a smaller or equal one again: when the clock stands still or
// moves backwards the next offset is the last one plus one. Identifiers
// therefore stay strictly increasing within a process, at the cost of
// running ahead of the clock during bursts. This state lives in memory only.
//
// # Resolution inference
//
// Decode infers an unspecified resolution from the identifier's length
// (7 ms, 6 second, 3 or 4 day, otherwise ms). The rule fits the default
// alphabet and epoch only; pass Config.Resolution when using anything else.
package msid
