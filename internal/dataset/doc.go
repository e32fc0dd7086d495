// Package dataset loads numeric observation tables from CSV and Excel
// files and computes per-column descriptive statistics.
//
// A Table is an n×d matrix of float64 observations plus column names. The
// loaders are tolerant the way field data demands: header rows are
// detected rather than assumed, thousands separators and surrounding
// whitespace are stripped, and rows that fail numeric parsing are skipped
// and counted instead of aborting the load. Profile summarizes each column
// (mean, median, spread, range) so a report can describe the marginals
// next to the fitted dependence structure.
package dataset
