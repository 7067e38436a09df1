// Package commands defines the churnctl command tree.
//
// Two subcommands cover the batch workflow: `generate` writes a seeded
// synthetic customer batch with realistic defects, and `run` executes
// the full repair, feature and scoring pipeline against a CSV or XLSX
// input, writing every artifact under the output directory.
package commands
