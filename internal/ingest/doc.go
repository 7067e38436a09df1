// Package ingest reads raw customer records from tabular sources.
//
// CSV is the primary feed; XLSX workbooks exported from billing systems
// are accepted as well. Parsing is lenient by design: a blank or
// unparseable numeric cell becomes the missing marker and is left for
// the repair stage to classify and fix, never rejected at the boundary.
package ingest
