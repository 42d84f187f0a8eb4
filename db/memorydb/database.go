// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package memorydb is an in-memory db.Database. It is the journal store when
// no journal path is configured.
package memorydb // import "perun.network/go-assessment/db/memorydb"

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"perun.network/go-assessment/db"
)

// Database is a map-backed key-value store. It is safe for concurrent use.
type Database struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ db.Database = (*Database)(nil)

// NewDatabase creates an empty in-memory database.
func NewDatabase() *Database {
	return &Database{data: make(map[string]string)}
}

// Has implements db.Reader.
func (d *Database) Has(key string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.data[key]
	return ok, nil
}

// Get implements db.Reader.
func (d *Database) Get(key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.data[key]
	if !ok {
		return "", errors.WithMessage(db.ErrNotFound, key)
	}
	return v, nil
}

// GetBytes implements db.Reader.
func (d *Database) GetBytes(key string) ([]byte, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// Put implements db.Writer.
func (d *Database) Put(key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[key] = value
	return nil
}

// PutBytes implements db.Writer.
func (d *Database) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("nil value")
	}
	return d.Put(key, string(value))
}

// Delete implements db.Writer. Deleting a missing key is not an error.
func (d *Database) Delete(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.data, key)
	return nil
}

// NewIterator implements db.Iterable.
func (d *Database) NewIterator() db.Iterator {
	return d.NewIteratorWithPrefix("")
}

// NewIteratorWithPrefix implements db.Iterable. The iterator works on a
// snapshot taken at creation.
func (d *Database) NewIteratorWithPrefix(prefix string) db.Iterator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var keys []string
	for k := range d.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = d.data[k]
	}
	return &Iterator{keys: keys, values: values, next: 0}
}

// NewBatch implements db.Batcher.
func (d *Database) NewBatch() db.Batch {
	return &Batch{db: d}
}

// Iterator iterates over a snapshot of the database.
type Iterator struct {
	keys   []string
	values []string
	next   int
}

// Next advances the iterator.
func (i *Iterator) Next() bool {
	if i.next >= len(i.keys) {
		return false
	}
	i.next++
	return true
}

// Key returns the current key.
func (i *Iterator) Key() string { return i.keys[i.next-1] }

// Value returns the current value.
func (i *Iterator) Value() string { return i.values[i.next-1] }

// ValueBytes returns the current value as bytes.
func (i *Iterator) ValueBytes() []byte { return []byte(i.Value()) }

// Release implements db.Iterator.
func (i *Iterator) Release() error {
	i.keys, i.values = nil, nil
	return nil
}
