/**
 * Copyright 2025 Avroline Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package avro

import (
	"math"
	"unicode/utf8"
)

const (
	// maxIntVarintLen is the longest legal varint encoding of a 32-bit value
	maxIntVarintLen = 5
	// maxLongVarintLen is the longest legal varint encoding of a 64-bit value
	maxLongVarintLen = 10
)

func zigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// reader is a decode cursor over a byte slice. All read methods fail with
// ErrTruncated when the slice ends before the value does and with
// ErrInvalidEncoding when the bytes present do not form a valid value.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) readVarint(maxLen int) (uint64, error) {
	at := r.pos
	var u uint64
	for i := 0; i < maxLen; i++ {
		if r.pos >= len(r.buf) {
			return 0, newError(ErrTruncated, "varint at offset %d cut short", at)
		}
		b := r.buf[r.pos]
		r.pos++
		if i == maxLongVarintLen-1 && b > 1 {
			// the tenth byte of a long may only carry the final bit
			return 0, newError(ErrInvalidEncoding, "varint at offset %d overflows 64 bits", at)
		}
		u |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return u, nil
		}
	}
	return 0, newError(ErrInvalidEncoding, "varint at offset %d exceeds %d bytes", at, maxLen)
}

func (r *reader) readLong() (int64, error) {
	u, err := r.readVarint(maxLongVarintLen)
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

func (r *reader) readInt() (int32, error) {
	at := r.pos
	u, err := r.readVarint(maxIntVarintLen)
	if err != nil {
		return 0, err
	}
	v := zigzagDecode(u)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, newError(ErrInvalidEncoding, "int at offset %d out of 32-bit range: %d", at, v)
	}
	return int32(v), nil
}

func (r *reader) readString() (string, error) {
	at := r.pos
	n, err := r.readLong()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", newError(ErrInvalidEncoding, "negative string length %d at offset %d", n, at)
	}
	if n > math.MaxInt32 {
		return "", newError(ErrInvalidEncoding, "string length %d at offset %d exceeds 32-bit bound", n, at)
	}
	if int64(r.remaining()) < n {
		return "", newError(ErrTruncated, "string of %d bytes at offset %d, only %d remain", n, at, r.remaining())
	}
	body := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	if !utf8.Valid(body) {
		return "", newError(ErrInvalidEncoding, "string at offset %d is not valid UTF-8", at)
	}
	// string conversion copies, the record must not alias the input buffer
	return string(body), nil
}

func (r *reader) readBool() (bool, error) {
	if r.pos >= len(r.buf) {
		return false, newError(ErrTruncated, "boolean at offset %d missing", r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, newError(ErrInvalidEncoding, "boolean byte 0x%02x at offset %d", b, r.pos-1)
}

// readUnionIndex reads the branch selector of a ["null","string"] union:
// 0 selects null, 1 selects string.
func (r *reader) readUnionIndex() (int64, error) {
	at := r.pos
	i, err := r.readLong()
	if err != nil {
		return 0, err
	}
	if i != 0 && i != 1 {
		return 0, newError(ErrInvalidEncoding, "union index %d at offset %d", i, at)
	}
	return i, nil
}

func appendVarint(buf []byte, u uint64) []byte {
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

func appendLong(buf []byte, v int64) []byte {
	return appendVarint(buf, zigzagEncode(v))
}

func appendInt(buf []byte, v int32) []byte {
	return appendVarint(buf, zigzagEncode(int64(v)))
}

func appendString(buf []byte, s string) []byte {
	buf = appendLong(buf, int64(len(s)))
	return append(buf, s...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}
