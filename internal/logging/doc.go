// Package logging builds the slog loggers used across tubeget.
//
// The console format renders compact single-line records for terminal use;
// the JSON format exists for piping runs into other tooling. Attribute
// helpers keep field names consistent, and component loggers stamp every
// record with the subsystem that emitted it.
package logging
