// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package test contains generic tests for db.Database implementations.
package test // import "perun.network/go-assessment/db/test"

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-assessment/db"
)

// GenericDatabaseTest tests the reader, writer and iterator of a database.
// The database must be empty.
func GenericDatabaseTest(t *testing.T, d db.Database) {
	ok, err := d.Has("k")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = d.Get("k")
	assert.True(t, errors.Is(err, db.ErrNotFound), "missing key must yield ErrNotFound")

	require.NoError(t, d.Put("k", "v"))
	ok, err = d.Has("k")
	require.NoError(t, err)
	assert.True(t, ok)
	v, err := d.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, d.PutBytes("b", []byte{1, 2}))
	bs, err := d.GetBytes("b")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, bs)
	assert.Error(t, d.PutBytes("b", nil))

	require.NoError(t, d.Delete("k"))
	ok, err = d.Has("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Put("p.2", "two"))
	require.NoError(t, d.Put("p.1", "one"))
	require.NoError(t, d.Put("q.1", "other"))
	assertKeys(t, d.NewIteratorWithPrefix("p."), []string{"p.1", "p.2"}, []string{"one", "two"})

	tbl := db.NewTable(d, "p.")
	v, err = tbl.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
	require.NoError(t, tbl.Put("3", "three"))
	assertKeys(t, tbl.NewIterator(), []string{"1", "2", "3"}, []string{"one", "two", "three"})
	v, err = d.Get("p.3")
	require.NoError(t, err)
	assert.Equal(t, "three", v)
}

// GenericBatchTest tests that batch writes only appear after Apply.
func GenericBatchTest(t *testing.T, d db.Database) {
	b := db.NewTable(d, "batch.").NewBatch()
	require.NoError(t, b.Put("a", "1"))
	require.NoError(t, b.PutBytes("b", []byte("2")))
	require.NoError(t, b.Delete("c"))

	ok, err := d.Has("batch.a")
	require.NoError(t, err)
	assert.False(t, ok, "batch must not write before Apply")

	require.NoError(t, d.Put("batch.c", "3"))
	require.NoError(t, b.Apply())
	for key, want := range map[string]bool{"batch.a": true, "batch.b": true, "batch.c": false} {
		ok, err := d.Has(key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, key)
	}

	b.Reset()
	require.NoError(t, b.Put("d", "4"))
	require.NoError(t, b.Apply())
	ok, err = d.Has("batch.a")
	require.NoError(t, err)
	assert.True(t, ok, "reset must not undo applied writes")
}

func assertKeys(t *testing.T, it db.Iterator, keys, values []string) {
	var gotKeys, gotValues []string
	for it.Next() {
		gotKeys = append(gotKeys, it.Key())
		gotValues = append(gotValues, it.Value())
	}
	require.NoError(t, it.Release())
	assert.Equal(t, keys, gotKeys)
	assert.Equal(t, values, gotValues)
}
