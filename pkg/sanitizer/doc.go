// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input degrades to empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Display text (names, bios, notes): collapse whitespace, drop control characters
//   - Specialty tags: lowercase, collapse whitespace, strip punctuation at the edges
//   - Slices: remove duplicates and empty values after normalization, capped in length
package sanitizer
