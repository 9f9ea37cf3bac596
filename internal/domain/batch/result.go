package batch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the outcome of one item of a bulk write.
type Status string

// Item outcomes.
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Result reports what happened to one item of a bulk write. Key names the
// item (an entry id, a dictionary id or a referring term).
type Result struct {
	key    string
	status Status
	err    error
}

// OK records a successful item.
func OK(key string) Result { return Result{key: key, status: StatusOK} }

// Fail records a rejected item.
func Fail(key string, err error) Result { return Result{key: key, status: StatusError, err: err} }

// Key returns the item key.
func (r Result) Key() string { return r.key }

// Status returns the outcome.
func (r Result) Status() Status { return r.status }

// Err returns the item error, nil on success.
func (r Result) Err() error { return r.err }

// MarshalJSON renders {"key", "status", "error"}.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Key    string `json:"key"`
		Status Status `json:"status"`
		Error  string `json:"error,omitempty"`
	}{Key: r.key, Status: r.status}
	if r.err != nil {
		out.Error = r.err.Error()
	}
	return json.Marshal(out)
}

// Failed returns the rejected results in input order.
func Failed(rs []Result) []Result {
	var out []Result
	for _, r := range rs {
		if r.status == StatusError {
			out = append(out, r)
		}
	}
	return out
}

// Join folds every item error into one error, prefixed with its key.
// Returns nil when all items succeeded.
func Join(rs []Result) error {
	var errs []error
	for _, r := range rs {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.key, r.err))
		}
	}
	return errors.Join(errs...)
}
