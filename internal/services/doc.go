// Package services defines shared helpers for the external integrations.
//
// The sentinel error markers and the Wrap helper translate failures into a
// consistent taxonomy: validation and prerequisite failures abort the run with
// exit code 1, while external tool failures degrade to whatever fallback the
// calling stage defines.
package services
