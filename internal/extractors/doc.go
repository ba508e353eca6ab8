// Package extractors provides implementations of the Extractor interface
// for the supported document formats. Each extractor knows how to turn
// one file format into ordered segments.
//
// Extractors are registered with the Registry at startup and selected
// by file extension.
package extractors
