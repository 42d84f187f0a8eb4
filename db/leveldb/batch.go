// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package leveldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

// Batch wraps a goleveldb batch.
type Batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

// Put implements db.Writer.
func (b *Batch) Put(key, value string) error {
	b.b.Put([]byte(key), []byte(value))
	return nil
}

// PutBytes implements db.Writer.
func (b *Batch) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("nil value")
	}
	b.b.Put([]byte(key), value)
	return nil
}

// Delete implements db.Writer.
func (b *Batch) Delete(key string) error {
	b.b.Delete([]byte(key))
	return nil
}

// Apply implements db.Batch.
func (b *Batch) Apply() error {
	return errors.Wrap(b.db.Write(b.b, nil), "leveldb batch write")
}

// Reset implements db.Batch.
func (b *Batch) Reset() { b.b.Reset() }
