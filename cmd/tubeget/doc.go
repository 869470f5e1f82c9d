// Package main hosts the tubeget CLI entrypoint.
//
// The Cobra-based command translates one terminal invocation into a download
// run: it resolves configuration, verifies the external tool prerequisites,
// and hands the reference plus flags to the run orchestrator. Presentation
// concerns such as the stream catalog table and the interactive stream pick
// live here; everything else belongs in the internal packages.
package main
