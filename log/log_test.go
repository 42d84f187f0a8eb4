// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package log

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNone(t *testing.T) {
	assert.NotPanics(t, func() {
		None.Infof("%d", 1)
		None.WithField("k", "v").WithError(errors.New("e")).Debug("x")
	})
	assert.Panics(t, func() { None.Panic("boom") })
	assert.Panics(t, func() { None.Panicf("boom %d", 1) })
}

func TestSet(t *testing.T) {
	defer Set(nil)

	assert.Equal(t, None, Get(), "default logger must be None")
	Set(nil)
	assert.Equal(t, None, Get(), "Set(nil) must reset to None")
}
