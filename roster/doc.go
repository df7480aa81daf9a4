// Package roster defines the core result types shared between the query
// engine and the exporters, plus the sentinel errors the engine wraps its
// failures in. It is dependency-free on purpose: engine implementations live
// in subpackages (see roster/postgresengine).
package roster
