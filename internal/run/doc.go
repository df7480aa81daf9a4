// Package run sequences one roster report run: resolve the school year, bind
// it into the query, fetch, export, notify. The orchestrator performs the
// run's single wall-clock read and hands the instant down as a value, so
// every collaborator below it stays clock-free and testable.
package run
