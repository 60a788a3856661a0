// Package errors provides the classified error type used across overfastsite.
//
// A ClassifiedError carries a category (config, network, upstream, filesystem, ...),
// a severity, a retry hint and structured context. Errors are built with a fluent
// builder:
//
//	err := errors.NetworkError("fetch failed").
//		WithContext("endpoint", "heroes").
//		WithCause(originalErr).
//		Build()
//
// CLIErrorAdapter turns classified errors into user-facing messages and exit codes.
package errors
