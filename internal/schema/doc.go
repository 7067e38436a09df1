// Package schema declares the field contract for customer records and
// classifies violations against it.
//
// The validator is a pure function over a RawRecord: it never mutates the
// record and never performs I/O. It serves two roles in the pipeline,
// defect detection before repair and the correctness oracle asserting
// that every repaired record validates with zero violations.
package schema
