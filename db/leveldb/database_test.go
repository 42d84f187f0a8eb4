// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perun.network/go-assessment/db/test"
)

func newDatabase(t *testing.T) *Database {
	d, err := NewMemoryDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDatabase(t *testing.T) {
	test.GenericDatabaseTest(t, newDatabase(t))
}

func TestBatch(t *testing.T) {
	test.GenericBatchTest(t, newDatabase(t))
}

func TestDatabase_PutBytes_NilArgs(t *testing.T) {
	err := new(Database).PutBytes("key", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value")
}

func TestLoadDatabase(t *testing.T) {
	dir := t.TempDir()
	d, err := LoadDatabase(dir)
	require.NoError(t, err)
	require.NoError(t, d.Put("key", "value"))
	require.NoError(t, d.Close())

	d, err = LoadDatabase(dir)
	require.NoError(t, err)
	defer d.Close()
	v, err := d.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", v, "value must survive reopening")
}
