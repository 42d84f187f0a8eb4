// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package db contains the key-value storage interfaces that the transaction
// journal persists to. Implementations live in the subpackages memorydb and
// leveldb.
package db // import "perun.network/go-assessment/db"

import "github.com/pkg/errors"

// ErrNotFound is returned by Get and GetBytes for missing keys.
var ErrNotFound = errors.New("key not found")

// Reader reads from a key-value store.
type Reader interface {
	// Has checks whether the key is present.
	Has(key string) (bool, error)
	// Get returns the value stored at key. Returns ErrNotFound if the key
	// does not exist.
	Get(key string) (string, error)
	// GetBytes is Get for byte values.
	GetBytes(key string) ([]byte, error)
}

// Writer writes to a key-value store.
type Writer interface {
	Put(key, value string) error
	// PutBytes stores value at key. A nil value is an error.
	PutBytes(key string, value []byte) error
	Delete(key string) error
}

// Iterator iterates over key-value pairs in ascending key order.
// An iterator must be released after use.
type Iterator interface {
	Next() bool
	Key() string
	Value() string
	ValueBytes() []byte
	Release() error
}

// Iterable can create iterators.
type Iterable interface {
	NewIterator() Iterator
	NewIteratorWithPrefix(prefix string) Iterator
}

// Batch collects writes that are applied atomically.
type Batch interface {
	Writer
	// Apply performs all collected writes.
	Apply() error
	// Reset clears the batch.
	Reset()
}

// Batcher can create batches.
type Batcher interface {
	NewBatch() Batch
}

// Database is a key-value store.
type Database interface {
	Reader
	Writer
	Iterable
	Batcher
}
