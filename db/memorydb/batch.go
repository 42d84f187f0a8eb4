// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package memorydb

import "github.com/pkg/errors"

type op struct {
	key    string
	value  string
	delete bool
}

// Batch collects writes to a Database.
type Batch struct {
	db  *Database
	ops []op
}

// Put implements db.Writer.
func (b *Batch) Put(key, value string) error {
	b.ops = append(b.ops, op{key: key, value: value})
	return nil
}

// PutBytes implements db.Writer.
func (b *Batch) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("nil value")
	}
	return b.Put(key, string(value))
}

// Delete implements db.Writer.
func (b *Batch) Delete(key string) error {
	b.ops = append(b.ops, op{key: key, delete: true})
	return nil
}

// Apply implements db.Batch. All writes happen under one lock.
func (b *Batch) Apply() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	for _, o := range b.ops {
		if o.delete {
			delete(b.db.data, o.key)
		} else {
			b.db.data[o.key] = o.value
		}
	}
	return nil
}

// Reset implements db.Batch.
func (b *Batch) Reset() { b.ops = nil }
