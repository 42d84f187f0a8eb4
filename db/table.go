// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package db

import (
	"strings"

	"github.com/pkg/errors"
)

// table is a view into a Database whose keys all carry a common prefix.
type table struct {
	Database
	prefix string
}

// NewTable creates a view into db whose keys are prefixed by prefix.
// Keys passed to and returned by the table do not contain the prefix.
func NewTable(db Database, prefix string) Database {
	if db == nil {
		panic("nil database")
	}
	return &table{Database: db, prefix: prefix}
}

func (t *table) key(key string) string { return t.prefix + key }

// Has implements Reader.
func (t *table) Has(key string) (bool, error) { return t.Database.Has(t.key(key)) }

// Get implements Reader.
func (t *table) Get(key string) (string, error) { return t.Database.Get(t.key(key)) }

// GetBytes implements Reader.
func (t *table) GetBytes(key string) ([]byte, error) { return t.Database.GetBytes(t.key(key)) }

// Put implements Writer.
func (t *table) Put(key, value string) error { return t.Database.Put(t.key(key), value) }

// PutBytes implements Writer.
func (t *table) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("nil value")
	}
	return t.Database.PutBytes(t.key(key), value)
}

// Delete implements Writer.
func (t *table) Delete(key string) error { return t.Database.Delete(t.key(key)) }

// NewIterator implements Iterable. It only iterates the table's keys.
func (t *table) NewIterator() Iterator {
	return &tableIterator{Iterator: t.Database.NewIteratorWithPrefix(t.prefix), prefix: t.prefix}
}

// NewIteratorWithPrefix implements Iterable.
func (t *table) NewIteratorWithPrefix(prefix string) Iterator {
	return &tableIterator{Iterator: t.Database.NewIteratorWithPrefix(t.key(prefix)), prefix: t.prefix}
}

// NewBatch implements Batcher.
func (t *table) NewBatch() Batch {
	return &tableBatch{Batch: t.Database.NewBatch(), prefix: t.prefix}
}

type tableIterator struct {
	Iterator
	prefix string
}

func (i *tableIterator) Key() string { return strings.TrimPrefix(i.Iterator.Key(), i.prefix) }

type tableBatch struct {
	Batch
	prefix string
}

func (b *tableBatch) Put(key, value string) error { return b.Batch.Put(b.prefix+key, value) }

func (b *tableBatch) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("nil value")
	}
	return b.Batch.PutBytes(b.prefix+key, value)
}

func (b *tableBatch) Delete(key string) error { return b.Batch.Delete(b.prefix + key) }
