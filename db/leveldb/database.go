// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package leveldb is a db.Database backed by goleveldb. It persists the
// transaction journal across restarts.
package leveldb // import "perun.network/go-assessment/db/leveldb"

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"perun.network/go-assessment/db"
)

// Database wraps a goleveldb database.
type Database struct {
	DB *leveldb.DB
}

var _ db.Database = (*Database)(nil)

// LoadDatabase opens or creates the database at path.
func LoadDatabase(path string) (*Database, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %s", path)
	}
	return &Database{DB: ldb}, nil
}

// NewMemoryDatabase creates a leveldb database in memory storage.
func NewMemoryDatabase() (*Database, error) {
	ldb, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening in-memory leveldb")
	}
	return &Database{DB: ldb}, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return errors.Wrap(d.DB.Close(), "closing leveldb")
}

// Has implements db.Reader.
func (d *Database) Has(key string) (bool, error) {
	ok, err := d.DB.Has([]byte(key), nil)
	return ok, errors.Wrap(err, "leveldb has")
}

// Get implements db.Reader.
func (d *Database) Get(key string) (string, error) {
	v, err := d.GetBytes(key)
	return string(v), err
}

// GetBytes implements db.Reader.
func (d *Database) GetBytes(key string) ([]byte, error) {
	v, err := d.DB.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.WithMessage(db.ErrNotFound, key)
	}
	return v, errors.Wrap(err, "leveldb get")
}

// Put implements db.Writer.
func (d *Database) Put(key, value string) error {
	return d.PutBytes(key, []byte(value))
}

// PutBytes implements db.Writer.
func (d *Database) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("nil value")
	}
	return errors.Wrap(d.DB.Put([]byte(key), value, nil), "leveldb put")
}

// Delete implements db.Writer.
func (d *Database) Delete(key string) error {
	return errors.Wrap(d.DB.Delete([]byte(key), nil), "leveldb delete")
}

// NewIterator implements db.Iterable.
func (d *Database) NewIterator() db.Iterator {
	return &Iterator{d.DB.NewIterator(nil, nil)}
}

// NewIteratorWithPrefix implements db.Iterable.
func (d *Database) NewIteratorWithPrefix(prefix string) db.Iterator {
	return &Iterator{d.DB.NewIterator(util.BytesPrefix([]byte(prefix)), nil)}
}

// NewBatch implements db.Batcher.
func (d *Database) NewBatch() db.Batch {
	return &Batch{db: d.DB, b: new(leveldb.Batch)}
}

// Iterator wraps a goleveldb iterator.
type Iterator struct {
	it iterator.Iterator
}

// Next advances the iterator.
func (i *Iterator) Next() bool { return i.it.Next() }

// Key returns the current key.
func (i *Iterator) Key() string { return string(i.it.Key()) }

// Value returns the current value.
func (i *Iterator) Value() string { return string(i.it.Value()) }

// ValueBytes returns a copy of the current value.
func (i *Iterator) ValueBytes() []byte { return append([]byte(nil), i.it.Value()...) }

// Release releases the iterator.
func (i *Iterator) Release() error {
	i.it.Release()
	return errors.Wrap(i.it.Error(), "leveldb iterator")
}
