// Package model declares the trainer/scorer boundary the pipeline hands
// its feature matrix to, plus a reference logistic-regression
// implementation so a run produces probabilities end to end.
//
// The pipeline depends only on the interfaces: a trainer takes a
// feature-name-ordered matrix and binary label vector and returns a
// scoring function with per-feature attributions. Algorithm choice,
// cross-validation and hyperparameter search live behind this boundary.
package model
