// Package testerr provides helpers to simulate failing dependencies in tests.
package testerr

import "errors"

// Err is the error returned by failing dependencies.
var Err = errors.New("test error")
