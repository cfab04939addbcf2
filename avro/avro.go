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

// Package avro implements schema-driven decoding and encoding of binary
// records restricted to four field types: string, 32-bit signed integer,
// boolean and nullable string.
//
// A Schema is an ordered list of named, typed field descriptors; a
// Record is the immutable, fully populated value a successful decode
// produces, one typed value per schema field. Decoding either yields a
// Record whose field set exactly matches the schema or fails with an
// error carrying one of three codes: ErrInvalidSchema (reported before
// any input byte is consumed), ErrTruncated (input ended early) or
// ErrInvalidEncoding (bytes present but not a valid instance).
//
// # Wire format
//
// Records are encoded with the Apache Avro binary encoding, bit-exact,
// field by field in schema order with no per-field framing:
//
//   - int: two's-complement value in zig-zag order, written as a
//     base-128 varint, low group first, at most 5 bytes; encodings that
//     run longer or decode outside the 32-bit range are invalid.
//   - string: byte length as a zig-zag varint (an Avro long, at most 10
//     bytes), then that many bytes of UTF-8; bytes that are not valid
//     UTF-8 are invalid.
//   - boolean: a single byte, 0 or 1; any other value is invalid.
//   - nullable string: the ["null","string"] union, a zig-zag varint
//     branch index where 0 means absent and 1 means a string follows;
//     any other index is invalid. An absent value resolves to the field
//     default, which may itself be "no value".
//
// Compatibility with the reference Avro implementations follows from
// this choice: any Avro library can decode records this package encodes
// against the schema's JSON projection, and vice versa.
//
// Decode and Encode are pure functions of their inputs. Schemas,
// Decoders and Encoders are immutable after construction and safe for
// unlimited concurrent use; decoded Records own copies of their string
// bytes and never alias the input buffer.
package avro

import "io"

// AppendLong appends the zig-zag varint encoding of v to buf and returns
// the extended buffer. Container framings count and size their blocks
// with this encoding.
func AppendLong(buf []byte, v int64) []byte {
	return appendLong(buf, v)
}

// ReadLong reads one zig-zag varint encoded integer from r. It returns
// io.EOF only when the source ends before the first byte and
// io.ErrUnexpectedEOF when it ends mid-value; an encoding running past
// 10 bytes or overflowing 64 bits yields ErrInvalidEncoding.
func ReadLong(r io.ByteReader) (int64, error) {
	var u uint64
	for i := 0; i < maxLongVarintLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if i == maxLongVarintLen-1 && b > 1 {
			return 0, newError(ErrInvalidEncoding, "varint overflows 64 bits")
		}
		u |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return zigzagDecode(u), nil
		}
	}
	return 0, newError(ErrInvalidEncoding, "varint exceeds %d bytes", maxLongVarintLen)
}
