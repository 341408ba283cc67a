package jobs

import (
	"fmt"
)

type ErrorKind string

const (
	WorkspaceError ErrorKind = "workspace"
	DownloadError  ErrorKind = "download"
	NoArtifact     ErrorKind = "no-artifact"
	TranscodeError ErrorKind = "transcode"
	DeliveryError  ErrorKind = "delivery"
	InternalError  ErrorKind = "internal"
)

// Error is a job failure resolved inside the job; it never leaves the executor as a Go error.
type Error struct {
	Kind     ErrorKind
	Detail   string
	TimedOut bool // DownloadError sub-kind: the tool was killed at the deadline
	Err      error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.TimedOut {
		msg += " (timeout)"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

type OutcomeKind int

const (
	Delivered OutcomeKind = iota + 1
	DeliveredWithFallback
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case DeliveredWithFallback:
		return "delivered-with-fallback"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the terminal state of a job.
//   - Delivered: Path is the file handed to the messenger.
//   - DeliveredWithFallback: Path is the original artifact, Reason says why the transcode was dropped.
//   - Failed: Err carries kind and detail.
type Outcome struct {
	Kind   OutcomeKind
	Path   string
	Reason string
	Err    *Error
}

func NewDelivered(path string) Outcome {
	return Outcome{Kind: Delivered, Path: path}
}

func NewFallback(path, reason string) Outcome {
	return Outcome{Kind: DeliveredWithFallback, Path: path, Reason: reason}
}

func NewFailed(kind ErrorKind, detail string, err error) Outcome {
	return Outcome{Kind: Failed, Err: &Error{Kind: kind, Detail: detail, Err: err}}
}

func (o Outcome) String() string {
	switch o.Kind {
	case Failed:
		if o.Err != nil {
			return "failed: " + o.Err.Error()
		}
	case DeliveredWithFallback:
		return fmt.Sprintf("%s %s (%s)", o.Kind, o.Path, o.Reason)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Path)
}
