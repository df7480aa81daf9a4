// Package cli defines the cobra command tree: "run" executes one report run,
// "check" probes database and SMTP connectivity. The process exits non-zero
// whenever a command returns an error.
package cli
