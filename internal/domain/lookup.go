package domain

import "errors"

// LookupStatus is the outcome of one collaborator read.
type LookupStatus int

const (
	LookupAbsent LookupStatus = iota
	LookupFound
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Lookup carries the result of a collaborator read: a value, nothing, or
// the error that prevented the read.
type Lookup[T any] struct {
	Value  T
	Status LookupStatus
	Err    error
}

func Found[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, Status: LookupFound}
}

func Absent[T any]() Lookup[T] {
	return Lookup[T]{Status: LookupAbsent}
}

func Failed[T any](err error) Lookup[T] {
	return Lookup[T]{Status: LookupFailed, Err: err}
}

// LookupOf classifies a collaborator's return values. ErrNoData counts as
// absent; any other error is a failure.
func LookupOf[T any](v T, err error) Lookup[T] {
	switch {
	case err == nil:
		return Found(v)
	case errors.Is(err, ErrNoData):
		return Absent[T]()
	default:
		return Failed[T](err)
	}
}

// Get returns the value and whether the lookup found one.
func (l Lookup[T]) Get() (T, bool) {
	return l.Value, l.Status == LookupFound
}
