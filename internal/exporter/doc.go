// Package exporter renders fitted copula models into report files.
//
// A Report bundles everything one estimation run produced: the model
// summary, descriptive statistics of the input columns, a sampled tail
// concentration curve, and optional simulated draws. WriteCSV lays the
// report out as a directory of CSV files (UTF-8 BOM prefixed so
// spreadsheets open them cleanly); WriteXLSX renders the same content as a
// single multi-sheet workbook.
package exporter
