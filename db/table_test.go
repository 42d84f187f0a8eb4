// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_NilArgs(t *testing.T) {
	assert.Panics(t, func() { NewTable(nil, "prefix") })
}

func TestTable_PutBytes_NilArgs(t *testing.T) {
	err := new(table).PutBytes("key", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value")
}

func TestTableBatch_PutBytes_NilArgs(t *testing.T) {
	err := new(tableBatch).PutBytes("key", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value")
}
