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
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/avroline/avroline-go/avro"
)

// WriterConfig is used to pass multiple configuration options to the Writer.
type WriterConfig struct {
	// BlockRecords is the number of records buffered into one block
	// before it is written out
	BlockRecords int
	// Codec selects the block compression
	Codec Codec
	// Metadata holds extra header metadata pairs. Keys in the "avro."
	// namespace are reserved for the format itself.
	Metadata map[string][]byte
}

// NewWriterConfig returns a new configuration instance with sane defaults.
func NewWriterConfig() *WriterConfig {
	c := &WriterConfig{}

	c.BlockRecords = 100
	c.Codec = CodecNull

	return c
}

// Writer writes records into an object container byte stream. Records
// are buffered into blocks; Flush writes out the pending block and Close
// flushes and ends the stream. Close does not close the underlying
// io.Writer.
type Writer struct {
	w      io.Writer
	schema *avro.Schema
	enc    *avro.Encoder
	conf   *WriterConfig
	sync   [syncSize]byte
	buf    []byte
	count  int64
	closed bool
}

// NewWriter validates the configuration and writes the container header,
// with a freshly generated sync marker, to w.
func NewWriter(w io.Writer, schema *avro.Schema, conf *WriterConfig) (*Writer, error) {
	if conf == nil {
		conf = NewWriterConfig()
	}
	if conf.BlockRecords <= 0 {
		return nil, fmt.Errorf("ocf: block records must be a positive integer")
	}
	if _, err := parseCodec(string(conf.Codec)); err != nil {
		return nil, err
	}
	for key := range conf.Metadata {
		if strings.HasPrefix(key, reservedPrefix) {
			return nil, fmt.Errorf("ocf: metadata key %q is reserved", key)
		}
	}
	enc, err := avro.NewEncoder(schema)
	if err != nil {
		return nil, err
	}
	wr := &Writer{w: w, schema: schema, enc: enc, conf: conf}
	u := uuid.New()
	copy(wr.sync[:], u[:])
	if err := wr.writeHeader(); err != nil {
		return nil, err
	}
	return wr, nil
}

// Schema returns the schema the writer encodes against
func (w *Writer) Schema() *avro.Schema {
	return w.schema
}

// Append encodes one record into the pending block, writing the block
// out once it holds BlockRecords records
func (w *Writer) Append(rec *avro.Record) error {
	if w.closed {
		return ErrClosed
	}
	b, err := w.enc.Encode(rec)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, b...)
	w.count++
	if w.count >= int64(w.conf.BlockRecords) {
		return w.Flush()
	}
	return nil
}

// Flush writes the pending block, if any, to the underlying writer
func (w *Writer) Flush() error {
	if w.count == 0 {
		return nil
	}
	data := w.buf
	if w.conf.Codec == CodecDeflate {
		var compressed bytes.Buffer
		fw, err := flate.NewWriter(&compressed, flate.DefaultCompression)
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return err
		}
		if err := fw.Close(); err != nil {
			return err
		}
		data = compressed.Bytes()
	}
	out := avro.AppendLong(nil, w.count)
	out = avro.AppendLong(out, int64(len(data)))
	out = append(out, data...)
	out = append(out, w.sync[:]...)
	w.buf = w.buf[:0]
	w.count = 0
	_, err := w.w.Write(out)
	return err
}

// Close flushes the pending block and marks the writer closed. Appending
// after Close fails with ErrClosed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.Flush()
}

func (w *Writer) writeHeader() error {
	header := append([]byte(nil), magic[:]...)
	pairs := 2 + len(w.conf.Metadata)
	header = avro.AppendLong(header, int64(pairs))
	header = appendMetaPair(header, schemaKey, []byte(w.schema.String()))
	header = appendMetaPair(header, codecKey, []byte(w.conf.Codec))
	for key, value := range w.conf.Metadata {
		header = appendMetaPair(header, key, value)
	}
	header = avro.AppendLong(header, 0)
	header = append(header, w.sync[:]...)
	_, err := w.w.Write(header)
	return err
}

func appendMetaPair(buf []byte, key string, value []byte) []byte {
	buf = avro.AppendLong(buf, int64(len(key)))
	buf = append(buf, key...)
	buf = avro.AppendLong(buf, int64(len(value)))
	return append(buf, value...)
}
