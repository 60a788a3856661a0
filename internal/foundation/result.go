// Package foundation provides small generic building blocks shared across overfastsite.
package foundation

import "fmt"

// Result holds either the value of a successful operation or the reason it failed.
// Upstream fetches return a Result instead of a nil sentinel so every consumer has
// to decide what to do with the failure case.
type Result[T any, E error] struct {
	value T
	err   E
	isOk  bool
}

// Ok creates a successful Result.
func Ok[T any, E error](value T) Result[T, E] {
	return Result[T, E]{value: value, isOk: true}
}

// Err creates a failed Result.
func Err[T any, E error](err E) Result[T, E] {
	return Result[T, E]{err: err}
}

// IsOk reports whether the Result holds a value.
func (r Result[T, E]) IsOk() bool {
	return r.isOk
}

// IsErr reports whether the Result holds a failure.
func (r Result[T, E]) IsErr() bool {
	return !r.isOk
}

// Unwrap returns the value and panics on a failed Result.
func (r Result[T, E]) Unwrap() T {
	if !r.isOk {
		panic(fmt.Sprintf("called Unwrap on Err result: %v", r.err))
	}
	return r.value
}

// UnwrapOr returns the value, or fallback when the Result failed.
func (r Result[T, E]) UnwrapOr(fallback T) T {
	if r.isOk {
		return r.value
	}
	return fallback
}

// UnwrapErr returns the failure and panics on a successful Result.
func (r Result[T, E]) UnwrapErr() E {
	if r.isOk {
		panic("called UnwrapErr on Ok result")
	}
	return r.err
}

// Match calls onOk or onErr depending on the outcome.
func (r Result[T, E]) Match(onOk func(T), onErr func(E)) {
	if r.isOk {
		onOk(r.value)
		return
	}
	onErr(r.err)
}

// ToTuple converts the Result back into the usual (value, error) pair.
func (r Result[T, E]) ToTuple() (T, E) {
	if r.isOk {
		var zeroErr E
		return r.value, zeroErr
	}
	var zeroVal T
	return zeroVal, r.err
}

// Map transforms the value of a successful Result; failures pass through unchanged.
func Map[T, U any, E error](r Result[T, E], fn func(T) U) Result[U, E] {
	if r.isOk {
		return Ok[U, E](fn(r.value))
	}
	return Err[U, E](r.err)
}

// FlatMap chains an operation that itself returns a Result.
func FlatMap[T, U any, E error](r Result[T, E], fn func(T) Result[U, E]) Result[U, E] {
	if r.isOk {
		return fn(r.value)
	}
	return Err[U, E](r.err)
}

// FromTuple builds a Result from a (value, error) pair.
func FromTuple[T any, E error](value T, err E) Result[T, E] {
	if any(err) != nil {
		return Err[T, E](err)
	}
	return Ok[T, E](value)
}
