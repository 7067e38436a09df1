// Package pipeline orchestrates the batch run: validate, repair,
// winsorize, split, fit statistics, derive features, train, score and
// classify, strictly in that order.
//
// Each stage depends on state the previous one produced, so stages never
// reorder; within a stage, per-record work may fan out across workers
// against read-only shared statistics. A caller cancels between stages
// through the context; stages are not interruptible mid-record.
package pipeline
