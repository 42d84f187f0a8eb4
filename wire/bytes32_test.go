// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package wire

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBytes32(t *testing.T) {
	rng := rand.New(rand.NewSource(0xdeadbeef))
	letters := []rune("abcdefghijklmnopqrstuvwxyzäöü")
	random := make([]rune, 10)
	for i := range random {
		random[i] = letters[rng.Intn(len(letters))]
	}

	t.Run("valid strings", func(t *testing.T) {
		ss := []string{"", "a", "Alice", "Bob", string(random), strings.Repeat("x", MaxBytes32StringLen)}
		for _, s := range ss {
			b, err := EncodeBytes32(s)
			require.NoError(t, err)
			d, err := DecodeBytes32(b)
			require.NoError(t, err)
			assert.Equal(t, s, d)
		}
	})

	t.Run("padding", func(t *testing.T) {
		b, err := EncodeBytes32("Carol")
		require.NoError(t, err)
		assert.Equal(t, []byte("Carol"), b[:5])
		for _, c := range b[5:] {
			assert.Zero(t, c, "remainder must be zero-padded")
		}
	})

	t.Run("too long string", func(t *testing.T) {
		_, err := EncodeBytes32(strings.Repeat("x", Bytes32Len))
		require.Error(t, err)
		assert.Equal(t, ErrStringTooLong, errors.Cause(err))
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := EncodeBytes32("\xff")
		assert.Error(t, err)

		var b Bytes32
		b[0] = 0xff
		_, err = DecodeBytes32(b)
		assert.Error(t, err)
	})

	t.Run("embedded null", func(t *testing.T) {
		for _, s := range []string{"\x00", "Bob\x00Evil", "Bob\x00"} {
			_, err := EncodeBytes32(s)
			assert.Error(t, err, "%q must not encode", s)
		}
	})

	t.Run("missing terminator", func(t *testing.T) {
		var b Bytes32
		copy(b[:], strings.Repeat("y", Bytes32Len))
		_, err := DecodeBytes32(b)
		assert.Error(t, err)
	})

	t.Run("stops at first null", func(t *testing.T) {
		var b Bytes32
		copy(b[:], "Dan\x00junk")
		d, err := DecodeBytes32(b)
		require.NoError(t, err)
		assert.Equal(t, "Dan", d)
	})
}
