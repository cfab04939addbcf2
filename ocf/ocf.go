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

// Package ocf reads and writes Avro object container files: a header
// carrying the schema, followed by blocks of records, each block closed
// by a 16-byte sync marker.
//
// The Reader turns a container byte stream into a lazy sequence of
// records. Each Read call decodes at most one record; the caller drives
// the sequence and may stop at any point without leaking anything, and
// any blocking happens inside the caller-supplied io.Reader. Decode
// failures do not poison the sequence: a corrupt record or block is
// reported as that call's error and the next Read picks up at the next
// sync marker, so one damaged region costs exactly one error element.
// Only when no marker can be found before the stream ends does the
// sequence terminate, with that error as its last element.
//
// The Writer produces container streams the Reader and the reference
// Avro implementations can both consume. Blocks may be stored raw or
// DEFLATE-compressed; sync markers are freshly generated random UUIDs.
package ocf

import "errors"

// Codec identifies the compression applied to block data
type Codec string

const (
	// CodecNull stores block data uncompressed
	CodecNull Codec = "null"
	// CodecDeflate compresses block data with raw DEFLATE (RFC 1951)
	CodecDeflate Codec = "deflate"
)

// magic opens every object container file
var magic = [4]byte{'O', 'b', 'j', 1}

const (
	// syncSize is the length of the block sync marker
	syncSize = 16
	// schemaKey is the reserved metadata key holding the schema JSON
	schemaKey = "avro.schema"
	// codecKey is the reserved metadata key naming the block codec
	codecKey = "avro.codec"
	// reservedPrefix guards the metadata namespace of the format itself
	reservedPrefix = "avro."
	// maxBlockSize caps how much a single block header may claim,
	// keeping a corrupt length from provoking a giant allocation
	maxBlockSize = 1 << 30
)

// ErrClosed is returned by Writer operations after Close
var ErrClosed = errors.New("ocf: writer is closed")

func parseCodec(name string) (Codec, error) {
	switch Codec(name) {
	case CodecNull:
		return CodecNull, nil
	case CodecDeflate:
		return CodecDeflate, nil
	}
	return "", errors.New("ocf: unsupported codec " + name)
}
