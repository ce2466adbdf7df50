// Package silence turns the diagnostic output of an ffmpeg silencedetect run
// into the ordered list of intervals to keep.
//
// The work happens in two steps. Parse scans the text line by line and
// extracts silence_start / silence_end markers plus the last progress report,
// which serves as the best estimate of the total media duration. A
// Complementer then walks the markers with a small state machine and emits
// the non-silent spans covering [0, duration].
//
// Everything in this package is a pure function of its input: no I/O, no
// goroutines, no logging.
package silence
