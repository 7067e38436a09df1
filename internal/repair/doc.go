// Package repair converts raw customer records into clean, schema-valid
// records and accounts for every action it takes.
//
// Rules run in a fixed order, each assuming the previous has applied:
// deduplication, domain-floor correction, cross-field charge consistency,
// then stratified imputation of missing values. The only hard drop is a
// record without a usable identifier or label; every other defect is
// repaired in place and counted in the RepairReport.
//
// The package also hosts the outlier treater, which bounds extreme
// numeric values with Tukey fences after repair and before feature
// derivation.
package repair
