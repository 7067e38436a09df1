// Package exporter writes the pipeline's run artifacts: the cleaned
// dataset, per-customer risk assessments, the repair report, the
// fitted-statistics artifact and the model coefficients.
package exporter
