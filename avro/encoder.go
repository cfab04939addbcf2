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

// Encoder encodes records against a fixed schema, the exact symmetric
// counterpart of Decoder: for every valid record r,
// Decode(schema, Encode(r)) yields a record equal to r. An Encoder holds
// no mutable encode state and is safe for concurrent use.
type Encoder struct {
	schema *Schema
	plans  *cache.MapCache
}

// NewEncoder creates an Encoder for the given schema
func NewEncoder(schema *Schema) (*Encoder, error) {
	if schema == nil {
		return nil, newError(ErrInvalidSchema, "nil schema")
	}
	return &Encoder{schema: schema, plans: cache.NewMapCache()}, nil
}

// Schema returns the encoder's schema
func (e *Encoder) Schema() *Schema {
	return e.schema
}

// Encode encodes one record into its binary form. The record must have
// been built against a schema with the encoder's fingerprint.
func (e *Encoder) Encode(rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("nil record")
	}
	if rec.schema != e.schema && rec.schema.Fingerprint() != e.schema.Fingerprint() {
		return nil, fmt.Errorf("record schema %q does not match encoder schema %q",
			rec.schema.Name(), e.schema.Name())
	}
	return e.encodeValues(rec.values), nil
}

// EncodeMap encodes a map holding one entry per schema field. A missing
// key on a NullableString field encodes as absent; a missing key on any
// other field is an error, as is a key the schema does not declare.
func (e *Encoder) EncodeMap(m map[string]interface{}) ([]byte, error) {
	values := make([]interface{}, len(e.schema.fields))
	matched := 0
	for i, f := range e.schema.fields {
		raw, ok := m[f.Name]
		if !ok {
			if f.Type != NullableString {
				return nil, fmt.Errorf("map is missing field %q", f.Name)
			}
			values[i] = nil
			continue
		}
		matched++
		v, err := coerceValue(f, raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	if matched != len(m) {
		for name := range m {
			if _, ok := e.schema.FieldIndex(name); !ok {
				return nil, fmt.Errorf("map holds key %q the schema does not declare", name)
			}
		}
	}
	return e.encodeValues(values), nil
}

// encodeValues writes values already normalized to their canonical
// in-memory forms: string, int32, bool, nil.
func (e *Encoder) encodeValues(values []interface{}) []byte {
	buf := make([]byte, 0, 8*len(values))
	for i, f := range e.schema.fields {
		switch f.Type {
		case String:
			buf = appendString(buf, values[i].(string))
		case Int:
			buf = appendInt(buf, values[i].(int32))
		case Boolean:
			buf = appendBool(buf, values[i].(bool))
		case NullableString:
			if values[i] == nil {
				buf = appendLong(buf, 0)
			} else {
				buf = appendLong(buf, 1)
				buf = appendString(buf, values[i].(string))
			}
		}
	}
	return buf
}

// Encode encodes one record into its binary form. It is shorthand for
// NewEncoder followed by Encoder.Encode.
func Encode(schema *Schema, rec *Record) ([]byte, error) {
	e, err := NewEncoder(schema)
	if err != nil {
		return nil, err
	}
	return e.Encode(rec)
}
