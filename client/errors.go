// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"strconv"

	"github.com/pkg/errors"
)

// ValidationError is returned when a write is rejected locally before any
// transaction is created.
type ValidationError struct {
	Op     Op
	Reason string
}

func (e *ValidationError) Error() string {
	return string(e.Op) + ": " + e.Reason
}

// TxFailureError is returned when a transaction failed to submit or to
// confirm. The transaction record is in state Failed.
type TxFailureError struct {
	Tx  *Tx
	Err error
}

func (e *TxFailureError) Error() string {
	return "transaction " + string(e.Tx.Op) + " failed: " + e.Err.Error()
}

// Cause returns the underlying error, for errors.Cause.
func (e *TxFailureError) Cause() error { return e.Err }

// Unwrap returns the underlying error, for errors.Is.
func (e *TxFailureError) Unwrap() error { return e.Err }

type queryError struct {
	index int
	err   error
}

var _ error = (*ReadError)(nil)

// ReadError is a collection of errors that occurred during a read. A
// fan-out read collects the failure of every sub-query.
type ReadError struct {
	Method string
	errors []queryError
}

func newReadError(method string, err error) *ReadError {
	return &ReadError{Method: method, errors: []queryError{{index: -1, err: err}}}
}

func (e *ReadError) Error() string {
	msg := "reading " + e.Method + " failed:"
	for _, err := range e.errors {
		if err.index < 0 {
			msg += " " + err.err.Error()
			continue
		}
		msg += "\ncandidate[" + strconv.Itoa(err.index) + "]: " + err.err.Error()
	}
	return msg
}

// Len returns the number of failed queries.
func (e *ReadError) Len() int { return len(e.errors) }

// Unwrap returns the first underlying error.
func (e *ReadError) Unwrap() error {
	if len(e.errors) == 0 {
		return nil
	}
	return e.errors[0].err
}

// IsValidationError tells whether err is a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTxFailure tells whether err is a TxFailureError.
func IsTxFailure(err error) bool {
	var f *TxFailureError
	return errors.As(err, &f)
}

// IsReadError tells whether err is a ReadError.
func IsReadError(err error) bool {
	var r *ReadError
	return errors.As(err, &r)
}
