// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package wire contains the fixed-width encoding used for candidate
// identifiers on chain.
package wire // import "perun.network/go-assessment/wire"

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Bytes32Len is the width of an encoded identifier.
const Bytes32Len = 32

// MaxBytes32StringLen is the longest string, in bytes, that fits into a
// Bytes32. The last byte is reserved for the null terminator.
const MaxBytes32StringLen = Bytes32Len - 1

// ErrStringTooLong is returned when a string does not fit into a Bytes32.
// Overflowing strings are rejected, never truncated.
var ErrStringTooLong = errors.New("string exceeds 31 bytes")

// Bytes32 is a null-terminated, zero-padded string of at most 31 bytes.
type Bytes32 = [Bytes32Len]byte

// EncodeBytes32 encodes s into a Bytes32. The UTF-8 bytes of s are written
// left-aligned and the remainder is zero-padded. Strings containing a null
// byte are rejected since they would not decode back to s.
func EncodeBytes32(s string) (b Bytes32, err error) {
	if len(s) > MaxBytes32StringLen {
		return b, errors.Wrapf(ErrStringTooLong, "encoding %q (%d bytes)", s, len(s))
	}
	if !utf8.ValidString(s) {
		return b, errors.Errorf("encoding %q: invalid utf-8", s)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return b, errors.Errorf("encoding %q: embedded null byte", s)
	}
	copy(b[:], s)
	return b, nil
}

// DecodeBytes32 decodes a Bytes32. Decoding stops at the first null byte.
// An identifier without null terminator or with invalid UTF-8 is rejected.
func DecodeBytes32(b Bytes32) (string, error) {
	if b[Bytes32Len-1] != 0 {
		return "", errors.New("decoding bytes32: missing null terminator")
	}
	n := bytes.IndexByte(b[:], 0)
	if !utf8.Valid(b[:n]) {
		return "", errors.New("decoding bytes32: invalid utf-8")
	}
	return string(b[:n]), nil
}
