package types

import (
	"slices"
	"time"
)

// ErrorKind classifies a failed device operation.
type ErrorKind string

const (
	// ErrorKindTransport means the device could not be reached or the
	// request timed out.
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindHTTPStatus means the device answered with a non-2xx status.
	ErrorKindHTTPStatus ErrorKind = "httpStatus"
	// ErrorKindParse means the body was malformed or missing expected data.
	ErrorKindParse ErrorKind = "parse"
)

// ErrorRecord describes one failed device operation.
type ErrorRecord struct {
	Time       time.Time `json:"time" yaml:"time"`
	Op         string    `json:"op" yaml:"op"`
	Kind       ErrorKind `json:"kind" yaml:"kind"`
	StatusCode int       `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Message    string    `json:"message" yaml:"message"`
}

// ErrorLog is an append-only list of failures. It is never pruned.
// ErrorLog is not safe for concurrent use, its owner serializes access.
type ErrorLog struct {
	records []ErrorRecord
}

// Append adds a record to the end of the log.
func (l *ErrorLog) Append(r ErrorRecord) {
	l.records = append(l.records, r)
}

// Len returns the number of records appended so far.
func (l *ErrorLog) Len() int {
	return len(l.records)
}

// Records returns a copy of the log in the order records were appended.
func (l *ErrorLog) Records() []ErrorRecord {
	if l.records == nil {
		return []ErrorRecord{}
	}
	return slices.Clone(l.records)
}
