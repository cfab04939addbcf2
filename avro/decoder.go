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
	"fmt"

	"github.com/avroline/avroline-go/cache"
)

// Decoder decodes binary records against a fixed schema. A Decoder holds
// no mutable decode state and is safe for concurrent use.
type Decoder struct {
	schema *Schema
	plans  *cache.MapCache
}

// NewDecoder creates a Decoder for the given schema. The schema carries
// its own validity from construction, so the only schema failure left to
// report here is a missing schema.
func NewDecoder(schema *Schema) (*Decoder, error) {
	if schema == nil {
		return nil, newError(ErrInvalidSchema, "nil schema")
	}
	return &Decoder{schema: schema, plans: cache.NewMapCache()}, nil
}

// Schema returns the decoder's schema
func (d *Decoder) Schema() *Schema {
	return d.schema
}

// Decode decodes exactly one record from data. The record must span the
// whole input: trailing bytes are reported as ErrInvalidEncoding, since
// framing layers hand the decoder exact payloads and silently accepted
// leftovers would hide an upstream framing bug.
//
// Decode is a pure function of its inputs: no I/O, no suspension, no
// state shared with other calls. It never returns a partially populated
// record; the first field failure aborts the decode with only the error.
func (d *Decoder) Decode(data []byte) (*Record, error) {
	rec, n, err := d.decodeNext(data)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, newError(ErrInvalidEncoding, "%d trailing bytes after record", len(data)-n)
	}
	return rec, nil
}

// DecodeNext decodes one record from the head of data and returns the
// number of bytes it consumed. Block readers use it to walk a buffer
// holding several consecutive records.
func (d *Decoder) DecodeNext(data []byte) (*Record, int, error) {
	return d.decodeNext(data)
}

func (d *Decoder) decodeNext(data []byte) (*Record, int, error) {
	r := reader{buf: data}
	values := make([]interface{}, len(d.schema.fields))
	for i := range d.schema.fields {
		f := &d.schema.fields[i]
		var v interface{}
		var err error
		switch f.Type {
		case String:
			v, err = r.readString()
		case Int:
			v, err = r.readInt()
		case Boolean:
			v, err = r.readBool()
		case NullableString:
			var idx int64
			idx, err = r.readUnionIndex()
			if err == nil {
				if idx == 0 {
					if f.Default != nil {
						v = *f.Default
					}
				} else {
					v, err = r.readString()
				}
			}
		}
		if err != nil {
			return nil, r.pos, fieldError(f.Name, err)
		}
		values[i] = v
	}
	return &Record{schema: d.schema, values: values}, r.pos, nil
}

// fieldError prefixes a decode error with the failing field, preserving
// the error code
func fieldError(name string, err error) error {
	if e, ok := err.(Error); ok {
		return Error{e.code, fmt.Sprintf("field %q: %s", name, e.str)}
	}
	return err
}

// Decode decodes one schema-encoded binary record into a Record.
// It is shorthand for NewDecoder followed by Decoder.Decode.
func Decode(schema *Schema, data []byte) (*Record, error) {
	d, err := NewDecoder(schema)
	if err != nil {
		return nil, err
	}
	return d.Decode(data)
}
