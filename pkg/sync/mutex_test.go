// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestLock tests that an empty mutex can be locked.
func TestLock(t *testing.T) {
	t.Parallel()

	var m Mutex

	done := make(chan struct{}, 1)
	go func() {
		m.Lock()
		done <- struct{}{}
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Error("lock on new mutex did not instantly succeed")
	}
}

func TestTryLock(t *testing.T) {
	t.Parallel()

	var m Mutex
	assert.True(t, m.TryLock(), "TryLock on new mutex must succeed")
	assert.False(t, m.TryLock(), "TryLock on locked mutex must fail")
}

// TestTryLockCtx_DoneContext tests that a cancelled context can never be used
// to acquire the mutex.
func TestTryLockCtx_DoneContext(t *testing.T) {
	t.Parallel()

	var m Mutex
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 256; i++ {
		assert.False(t, m.TryLockCtx(ctx), "TryLockCtx on closed context must fail")
	}
	assert.True(t, m.TryLock(), "failed TryLockCtx must leave the mutex unlocked")
}

func TestTryLockCtx_WithTimeout(t *testing.T) {
	t.Parallel()

	var m Mutex
	m.Lock()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		<-time.After(200 * time.Millisecond)
		m.Unlock()
	}()

	assert.True(t, m.TryLockCtx(ctx), "TryLockCtx must succeed once the holder unlocks")
}

func TestTryLockCtx_WithTimeout_Fail(t *testing.T) {
	t.Parallel()

	var m Mutex
	m.Lock()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.False(t, m.TryLockCtx(ctx), "TryLockCtx must time out")
	assert.True(t, time.Since(start) >= 150*time.Millisecond, "TryLockCtx returned early")
}

func TestUnlock(t *testing.T) {
	t.Parallel()

	var m Mutex
	m.Lock()
	m.Unlock()
	assert.True(t, m.TryLock(), "Unlock must make the next TryLock succeed")
	m.Unlock()
	assert.Panics(t, func() { m.Unlock() }, "unlocking an unlocked mutex must panic")
}
