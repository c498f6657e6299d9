// Package config loads the run configuration: worker count and upper bound.
//
// Two formats are accepted. Files ending in .yaml or .yml are parsed as YAML;
// everything else uses the line format:
//
//	threads=8
//	max_number=100000
//
// Optional strategy= and mode= lines (or YAML keys) select the distribution
// strategy and output mode.
//
// # Fallbacks
//
// Load never fails outright. A missing or unreadable file yields
// threads=4, max_number=65536 together with ErrUnreadable. A value that is not
// an integer falls back for that key only: threads to 255, max_number to
// 65536, reported as a *FieldError that matches ErrMalformedField. Several
// problems are joined with errors.Join, so callers log the error and carry
// on with the returned Config.
package config
