// Package config loads, normalizes, and validates tubeget configuration.
//
// The configuration lives in a single JSON file, created with defaults on
// first run. Keys absent from an existing file are backfilled from defaults
// rather than erroring, so upgrades never require hand-editing. Writes are
// serialized with a file lock because nothing stops two invocations from
// racing to create the file.
//
// Always obtain settings through this package so downstream code receives
// expanded paths and canonical values.
package config
