// Package features derives the named, interpretable feature set from
// clean customer records.
//
// Derivation is a pure function of one CleanRecord and a FittedStatistics
// value. The statistics are fitted exactly once, on the training
// partition, and passed read-only wherever features are derived. The
// evaluation partition never re-fits them, so evaluation data cannot
// leak into derivation. No feature reads the record's churn label.
package features
