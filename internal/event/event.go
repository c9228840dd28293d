package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	FileCopied
	FileSkipped
	FileFailed
	VerifyStarted
	VerifyOK
	VerifyFailed
	HashMismatch
)

var typeNames = [...]string{
	ScanStarted:   "ScanStarted",
	ScanComplete:  "ScanComplete",
	FileCopied:    "FileCopied",
	FileSkipped:   "FileSkipped",
	FileFailed:    "FileFailed",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
	HashMismatch:  "HashMismatch",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && int(t) > 0 {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine. Events are
// advisory: the engine sends them non-blocking and drops them when the
// consumer falls behind.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // source path
	Size      int64  // file size (FileCopied)
	Total     int64  // candidate count (ScanComplete)
	Error     error
}
