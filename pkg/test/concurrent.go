// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package test contains helpers for tests that run several goroutines, like
// concurrent session reads racing serialized writes.
package test // import "perun.network/go-assessment/pkg/test"

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/require"
)

// stage is a named step of a concurrent test, shared by a fixed number of
// goroutines.
type stage struct {
	name    string
	failed  atomic.Bool
	spawned chan struct{} // closed on the first spawn

	mu    sync.Mutex // protects wg setup, n and count
	wg    sync.WaitGroup
	n     int
	count int

	require.TestingT

	ct *ConcurrentT
}

// wait blocks until all goroutines of the stage are done and tells whether
// the stage passed.
func (s *stage) wait() bool {
	<-s.spawned
	s.wg.Wait()
	return !s.failed.Load()
}

// spawn registers one goroutine of the stage. All goroutines must agree on
// n, and at most n may register.
func (s *stage) spawn(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.spawned:
		if n != s.n {
			panic(fmt.Sprintf("stage %q spawned with inconsistent N: %d vs. %d", s.name, n, s.n))
		}
		if s.count == s.n {
			panic(fmt.Sprintf("stage %q spawned too often", s.name))
		}
		s.count++
	default:
		s.wg.Add(n)
		s.n = n
		s.count = 1
		close(s.spawned)
	}
}

// FailNow marks the stage as failed and ends the calling goroutine.
func (s *stage) FailNow() {
	if s.failed.CompareAndSwap(false, true) {
		s.wg.Done()
	}
	s.ct.FailNow()
}

// ConcurrentT lets several goroutines report failures to one test. Each
// goroutine runs inside a Stage and uses the T passed to it; other
// goroutines can Wait for a stage to finish.
type ConcurrentT struct {
	failMu sync.Mutex
	t      require.TestingT
	failed bool

	mu     sync.Mutex
	stages map[string]*stage
}

// NewConcurrent creates a concurrent test object for t.
func NewConcurrent(t require.TestingT) *ConcurrentT {
	return &ConcurrentT{t: t, stages: make(map[string]*stage)}
}

func (t *ConcurrentT) getStage(name string) *stage {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.stages[name]; ok {
		return s
	}
	s := &stage{name: name, spawned: make(chan struct{}), TestingT: t.t, ct: t}
	t.stages[name] = s
	return s
}

// Wait blocks until the named stages are done. If one of them failed, the
// calling goroutine ends.
func (t *ConcurrentT) Wait(names ...string) {
	if len(names) == 0 {
		panic("Wait called without stage names")
	}
	for _, name := range names {
		if !t.getStage(name).wait() {
			runtime.Goexit()
		}
	}
}

// FailNow fails the test once; later calls only end the calling goroutine.
func (t *ConcurrentT) FailNow() {
	t.failMu.Lock()
	defer t.failMu.Unlock()
	if !t.failed {
		t.failed = true
		t.t.FailNow()
	} else {
		runtime.Goexit()
	}
}

// StageN runs fn as one of goroutines goroutines sharing the named stage and
// returns when all of them are done. fn must only use the T it is passed in
// the calling goroutine.
func (t *ConcurrentT) StageN(name string, goroutines int, fn func(require.TestingT)) {
	s := t.getStage(name)
	s.spawn(goroutines)

	aborted := true
	defer func() {
		if aborted {
			if s.failed.CompareAndSwap(false, true) {
				defer s.wg.Done()
			}
			t.FailNow()
		}
	}()

	fn(s)
	aborted = false

	s.wg.Done()
	t.Wait(name)
}

// Stage is StageN with a single goroutine.
func (t *ConcurrentT) Stage(name string, fn func(require.TestingT)) {
	t.StageN(name, 1, fn)
}
