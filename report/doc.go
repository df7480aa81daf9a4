// Package report serializes a fetched roster into a spreadsheet artifact.
// CSV, XLSX and JSON are supported; everything happens in memory and the
// artifact is handed to the notifier as an attachment.
package report
