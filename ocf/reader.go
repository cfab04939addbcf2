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

package ocf

import (
	"bufio"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/avroline/avroline-go/avro"
)

// Reader reads records out of an object container byte stream, one per
// Read call.
//
// Read returns io.EOF once the stream is exhausted cleanly. A failure
// scoped to one record or one block comes back as that call's error and
// the next Read continues past it; only an unrecoverable failure ends
// the sequence, after which Read keeps returning io.EOF for corruption
// with no sync marker left to find, or the underlying I/O error itself.
type Reader struct {
	r      *bufio.Reader
	schema *avro.Schema
	dec    *avro.Decoder
	meta   map[string][]byte
	codec  Codec
	sync   [syncSize]byte

	block []byte
	pos   int
	left  int64
	err   error
}

// blockCorruption marks a failure while loading a block. aligned reports
// whether the stream is already positioned at the next block boundary,
// so the reader knows whether a marker scan is needed before going on.
type blockCorruption struct {
	err     error
	aligned bool
}

func (e *blockCorruption) Error() string {
	return e.err.Error()
}

// NewReader reads and validates the container header. The embedded
// schema is parsed here, so a schema problem surfaces before any record
// is decoded.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var m [4]byte
	if err := readFull(br, m[:]); err != nil {
		return nil, err
	}
	if m != magic {
		return nil, avro.NewError(avro.ErrInvalidEncoding, "not an Avro object container file")
	}
	meta, err := readMetadata(br)
	if err != nil {
		return nil, err
	}
	schemaJSON, ok := meta[schemaKey]
	if !ok {
		return nil, avro.NewError(avro.ErrInvalidSchema, "container header carries no "+schemaKey)
	}
	schema, err := avro.ParseSchema(string(schemaJSON))
	if err != nil {
		return nil, err
	}
	codec := CodecNull
	if name, ok := meta[codecKey]; ok {
		codec, err = parseCodec(string(name))
		if err != nil {
			return nil, err
		}
	}
	rd := &Reader{r: br, schema: schema, meta: meta, codec: codec}
	if err := readFull(br, rd.sync[:]); err != nil {
		return nil, err
	}
	rd.dec, err = avro.NewDecoder(schema)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

// Schema returns the schema embedded in the container header
func (r *Reader) Schema() *avro.Schema {
	return r.schema
}

// Codec returns the block codec named in the container header
func (r *Reader) Codec() Codec {
	return r.codec
}

// Metadata returns a copy of the header metadata pairs
func (r *Reader) Metadata() map[string][]byte {
	m := make(map[string][]byte, len(r.meta))
	for k, v := range r.meta {
		m[k] = append([]byte(nil), v...)
	}
	return m
}

// Read returns the next record in the stream. See the Reader doc for the
// error protocol.
func (r *Reader) Read() (*avro.Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		if r.left > 0 {
			rec, n, err := r.dec.DecodeNext(r.block[r.pos:])
			if err != nil {
				// the format is positional, nothing after a bad record
				// in this block can be trusted
				r.block, r.pos, r.left = nil, 0, 0
				return nil, err
			}
			r.pos += n
			r.left--
			return rec, nil
		}
		if rem := len(r.block) - r.pos; rem > 0 {
			r.block, r.pos = nil, 0
			return nil, avro.NewError(avro.ErrInvalidEncoding,
				fmt.Sprintf("%d stray bytes after the last record of a block", rem))
		}
		switch err := r.loadBlock().(type) {
		case nil:
		case *blockCorruption:
			if !err.aligned {
				if scanErr := r.resync(); scanErr != nil {
					if scanErr == io.EOF {
						r.err = io.EOF
					} else {
						r.err = scanErr
					}
				}
			}
			return nil, err.err
		default:
			r.err = err
			return nil, r.err
		}
	}
}

// loadBlock reads one block header, its data and the trailing sync
// marker, leaving the decompressed records in r.block. It returns nil,
// io.EOF at a clean end of stream, *blockCorruption for damage the
// reader can try to skip, or the underlying I/O error.
func (r *Reader) loadBlock() error {
	count, err := avro.ReadLong(r.r)
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return corrupt(normalizeTail(err, "block record count"), false)
	}
	if count < 0 {
		return corrupt(avro.NewError(avro.ErrInvalidEncoding,
			fmt.Sprintf("negative block record count %d", count)), false)
	}
	size, err := avro.ReadLong(r.r)
	if err != nil {
		return corrupt(normalizeTail(err, "block byte size"), false)
	}
	if size < 0 || size > maxBlockSize {
		return corrupt(avro.NewError(avro.ErrInvalidEncoding,
			fmt.Sprintf("block byte size %d out of range", size)), false)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r.r, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return corrupt(avro.NewError(avro.ErrTruncated,
				fmt.Sprintf("block of %d bytes cut short", size)), false)
		}
		return err
	}
	var marker [syncSize]byte
	if _, err := io.ReadFull(r.r, marker[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return corrupt(avro.NewError(avro.ErrTruncated, "sync marker cut short"), false)
		}
		return err
	}
	if marker != r.sync {
		return corrupt(avro.NewError(avro.ErrInvalidEncoding, "sync marker mismatch"), false)
	}
	if r.codec == CodecDeflate {
		fr := flate.NewReader(bytes.NewReader(data))
		data, err = io.ReadAll(fr)
		if err == nil {
			err = fr.Close()
		}
		if err != nil {
			// the sync marker checked out, the stream is already at the
			// next boundary
			return corrupt(avro.NewError(avro.ErrInvalidEncoding,
				"block data does not inflate: "+err.Error()), true)
		}
	}
	r.block, r.pos, r.left = data, 0, count
	return nil
}

// resync scans forward for the sync marker and leaves the stream
// positioned just past it. It returns io.EOF when the stream ends first.
func (r *Reader) resync() error {
	window := make([]byte, 0, syncSize)
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return err
		}
		if len(window) < syncSize {
			window = append(window, b)
		} else {
			copy(window, window[1:])
			window[syncSize-1] = b
		}
		if len(window) == syncSize && bytes.Equal(window, r.sync[:]) {
			return nil
		}
	}
}

func corrupt(err error, aligned bool) error {
	return &blockCorruption{err: err, aligned: aligned}
}

// normalizeTail maps an end-of-stream failure from a varint read to the
// truncation taxonomy, passing everything else through.
func normalizeTail(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return avro.NewError(avro.ErrTruncated, what+" cut short")
	}
	return err
}

// readMetadata decodes the header metadata map: string keys, byte
// values, written in one or more counted runs closed by a zero count.
func readMetadata(br *bufio.Reader) (map[string][]byte, error) {
	meta := make(map[string][]byte)
	for {
		count, err := avro.ReadLong(br)
		if err != nil {
			return nil, normalizeTail(err, "metadata count")
		}
		if count == 0 {
			return meta, nil
		}
		if count < 0 {
			// negative runs carry their byte size for skipping, which
			// a sequential reader has no use for
			count = -count
			if _, err := avro.ReadLong(br); err != nil {
				return nil, normalizeTail(err, "metadata run size")
			}
		}
		if count > maxBlockSize {
			return nil, avro.NewError(avro.ErrInvalidEncoding,
				fmt.Sprintf("metadata run of %d entries out of range", count))
		}
		for i := int64(0); i < count; i++ {
			key, err := readMetaBytes(br, "metadata key")
			if err != nil {
				return nil, err
			}
			if !utf8.Valid(key) {
				return nil, avro.NewError(avro.ErrInvalidEncoding, "metadata key is not valid UTF-8")
			}
			value, err := readMetaBytes(br, "metadata value")
			if err != nil {
				return nil, err
			}
			meta[string(key)] = value
		}
	}
}

func readMetaBytes(br *bufio.Reader, what string) ([]byte, error) {
	n, err := avro.ReadLong(br)
	if err != nil {
		return nil, normalizeTail(err, what+" length")
	}
	if n < 0 || n > maxBlockSize {
		return nil, avro.NewError(avro.ErrInvalidEncoding,
			fmt.Sprintf("%s length %d out of range", what, n))
	}
	b := make([]byte, n)
	if err := readFull(br, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readFull(br *bufio.Reader, b []byte) error {
	if _, err := io.ReadFull(br, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return avro.NewError(avro.ErrTruncated, "container header cut short")
		}
		return err
	}
	return nil
}
