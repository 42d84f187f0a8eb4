// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package sync contains synchronization primitives that are missing from the
// standard library.
package sync // import "perun.network/go-assessment/pkg/sync"

import (
	"context"
	stdsync "sync"
)

// Mutex is a replacement of the standard mutex type.
// It supports the additional TryLock() and TryLockCtx() functions.
// The zero value is an unlocked mutex.
type Mutex struct {
	once   stdsync.Once
	locked chan struct{}
}

func (m *Mutex) init() {
	// The channel is created lazily so that the zero value is usable.
	m.once.Do(func() { m.locked = make(chan struct{}, 1) })
}

// Lock blocks until the mutex is locked.
func (m *Mutex) Lock() {
	m.init()
	m.locked <- struct{}{}
}

// TryLock tries to lock the mutex without blocking.
// Returns whether the mutex was acquired.
func (m *Mutex) TryLock() bool {
	m.init()
	select {
	case m.locked <- struct{}{}:
		return true
	default:
		return false
	}
}

// TryLockCtx tries to lock the mutex until the context is done.
// Returns whether the mutex was acquired. A done context never acquires
// the mutex, even if it is free.
func (m *Mutex) TryLockCtx(ctx context.Context) bool {
	m.init()
	if ctx.Err() != nil {
		return false
	}
	select {
	case m.locked <- struct{}{}:
		if ctx.Err() != nil {
			<-m.locked
			return false
		}
		return true
	case <-ctx.Done():
		return false
	}
}

// Unlock unlocks the mutex. Panics if the mutex is not locked.
func (m *Mutex) Unlock() {
	m.init()
	select {
	case <-m.locked:
	default:
		panic("unlock of unlocked mutex")
	}
}
