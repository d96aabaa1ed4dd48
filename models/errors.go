package models

import (
	"errors"
	"fmt"
)

// Error type labels recorded on results and in the run history.
const (
	ErrorTypeFetch    = "fetch_error"
	ErrorTypeUnpack   = "unpack_error"
	ErrorTypeParse    = "parse_error"
	ErrorTypeExcluded = "excluded"
	ErrorTypeSink     = "sink_error"
	ErrorTypeInternal = "internal_error"
)

// ParseFailure is returned when a filename matches no known shape or its
// subject cannot be normalized.
type ParseFailure struct {
	Filename string
	Reason   string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("cannot classify %q: %s", e.Filename, e.Reason)
}

// PlacementConflict is reported when a destination already holds
// different content. The write still goes through.
type PlacementConflict struct {
	Key string
}

func (e *PlacementConflict) Error() string {
	return fmt.Sprintf("placement conflict at %s: existing content differs", e.Key)
}

// SinkFailure wraps an error from the write/upload collaborator.
type SinkFailure struct {
	Key string
	Err error
}

func (e *SinkFailure) Error() string {
	return fmt.Sprintf("sink failed for %s: %v", e.Key, e.Err)
}

func (e *SinkFailure) Unwrap() error { return e.Err }

// TransportFailure wraps a page or archive fetch error.
type TransportFailure struct {
	URL string
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportFailure) Unwrap() error { return e.Err }

// UnpackFailure is returned when an archive cannot be opened, or when one
// entry inside it cannot be read. Entry is empty for whole-archive failures.
type UnpackFailure struct {
	Archive string
	Entry   string
	Err     error
}

func (e *UnpackFailure) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("unpack %s from %s: %v", e.Entry, e.Archive, e.Err)
	}
	return fmt.Sprintf("unpack %s: %v", e.Archive, e.Err)
}

func (e *UnpackFailure) Unwrap() error { return e.Err }

// ErrorType maps an error from the taxonomy to its label.
func ErrorType(err error) string {
	var (
		pf *ParseFailure
		sf *SinkFailure
		tf *TransportFailure
		uf *UnpackFailure
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pf):
		return ErrorTypeParse
	case errors.As(err, &sf):
		return ErrorTypeSink
	case errors.As(err, &tf):
		return ErrorTypeFetch
	case errors.As(err, &uf):
		return ErrorTypeUnpack
	default:
		return ErrorTypeInternal
	}
}
