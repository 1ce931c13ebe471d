// Package protocol implements the line-oriented plotter protocol: the
// strings the firmware prints and how a host recognises them.
package protocol

import (
	"strings"

	"polargraph/core"
)

// Version represents the polargraph firmware version
const Version = "0.1.0"

// Protocol strings
const (
	Banner  = "( Starting )" // printed once at boot
	Ack     = "ok"           // ready for the next command line
	Prompt  = ">>> "         // printed after Ack, no line terminator
	Newline = "\r\n"         // line terminator for everything the firmware prints

	DiagnosticPrefix = "!! "
	invalidCharacter = DiagnosticPrefix + "Invalid character: "
	unhandledCommand = DiagnosticPrefix + "Unhandled command: "
	rejectedMove     = DiagnosticPrefix + "Rejected move: "
)

// InvalidCharacter formats the diagnostic for a byte that cannot start a word.
// The byte is reported by its decimal code.
func InvalidCharacter(c byte) string {
	return invalidCharacter + core.Itoa(int(c))
}

// UnhandledCommand formats the diagnostic for a letter/value pair that is
// well formed but not supported.
func UnhandledCommand(letter byte, value float64) string {
	return unhandledCommand + string(letter) + core.Ftoa(value, 2)
}

// RejectedMove formats the diagnostic for a move refused before any motion
func RejectedMove(reason string) string {
	return rejectedMove + reason
}

// LineKind classifies a line received from the firmware
type LineKind uint8

const (
	KindOther LineKind = iota
	KindAck
	KindBanner
	KindDiagnostic
	KindEmpty
)

// String returns the kind name
func (k LineKind) String() string {
	switch k {
	case KindAck:
		return "ack"
	case KindBanner:
		return "banner"
	case KindDiagnostic:
		return "diagnostic"
	case KindEmpty:
		return "empty"
	default:
		return "other"
	}
}

// StripPrompt removes any leading prompts and surrounding whitespace.
// Diagnostics are printed while a line is being read, so they follow the
// prompt on the same output line.
func StripPrompt(line string) string {
	line = strings.TrimSpace(line)
	for strings.HasPrefix(line, strings.TrimSpace(Prompt)) {
		line = strings.TrimSpace(strings.TrimPrefix(line, strings.TrimSpace(Prompt)))
	}
	return line
}

// Classify returns the kind of a firmware output line
func Classify(line string) LineKind {
	line = StripPrompt(line)
	switch {
	case line == "":
		return KindEmpty
	case line == Ack:
		return KindAck
	case line == Banner:
		return KindBanner
	case strings.HasPrefix(line, strings.TrimSpace(DiagnosticPrefix)):
		return KindDiagnostic
	default:
		return KindOther
	}
}
