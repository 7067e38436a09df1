// Package canonical maps free-form categorical spellings into the closed
// enumerations declared in pkg/contracts/domain.
//
// Matching folds case and strips whitespace and punctuation before
// consulting a per-field synonym table. The first matching synonym group
// wins; anything unmatched becomes the Unknown sentinel rather than a
// guess, and the repair stage later treats Unknown as missing.
// Canonicalization is idempotent: a canonical label maps to itself.
package canonical
