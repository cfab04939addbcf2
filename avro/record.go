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
	"math"
	"unicode/utf8"
)

// Record represents an immutable, fully populated value: exactly one
// value per schema field, typed according to the field's type tag.
// Field values are string, int32, bool, and for NullableString either
// string or nil. A partially populated Record is never observable;
// the only ways to obtain one are a successful decode and a successful
// RecordBuilder.Build.
type Record struct {
	schema *Schema
	values []interface{}
}

// Schema returns the schema the record was built against
func (r *Record) Schema() *Schema {
	return r.schema
}

// Get returns the value of the named field and a bool that is false when
// the schema has no such field. A NullableString field with no value
// yields a nil interface.
func (r *Record) Get(name string) (interface{}, bool) {
	i, ok := r.schema.FieldIndex(name)
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Value returns the value at field position i, in schema field order
func (r *Record) Value(i int) interface{} {
	return r.values[i]
}

// String returns the value of the named String field
func (r *Record) String(name string) (string, error) {
	v, err := r.value(name, String)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Int returns the value of the named Int field
func (r *Record) Int(name string) (int32, error) {
	v, err := r.value(name, Int)
	if err != nil {
		return 0, err
	}
	return v.(int32), nil
}

// Bool returns the value of the named Boolean field
func (r *Record) Bool(name string) (bool, error) {
	v, err := r.value(name, Boolean)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// OptionalString returns the value of the named NullableString field.
// A nil result means the field has no value, which is distinct from an
// empty string.
func (r *Record) OptionalString(name string) (*string, error) {
	v, err := r.value(name, NullableString)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	s := v.(string)
	return &s, nil
}

func (r *Record) value(name string, want Type) (interface{}, error) {
	i, ok := r.schema.FieldIndex(name)
	if !ok {
		return nil, fmt.Errorf("record %q has no field %q", r.schema.Name(), name)
	}
	if got := r.schema.Field(i).Type; got != want {
		return nil, fmt.Errorf("field %q has type %q, not %q", name, string(got), string(want))
	}
	return r.values[i], nil
}

// Map returns the record contents copied into a map, one entry per
// schema field. A NullableString field with no value maps to a nil
// interface value under its key.
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.values))
	for i, f := range r.schema.fields {
		m[f.Name] = r.values[i]
	}
	return m
}

// Equal reports whether two records have the same schema fingerprint and
// the same field values
func (r *Record) Equal(other *Record) bool {
	if other == nil {
		return false
	}
	if r.schema.Fingerprint() != other.schema.Fingerprint() {
		return false
	}
	for i, v := range r.values {
		if v != other.values[i] {
			return false
		}
	}
	return true
}

// RecordBuilder assembles a Record field by field. Values are validated
// as they are set; Build validates population and applies defaults, so
// an invalid or incomplete Record can never escape.
type RecordBuilder struct {
	schema *Schema
	values []interface{}
	set    []bool
}

// NewRecordBuilder creates a RecordBuilder for the given schema
func NewRecordBuilder(schema *Schema) *RecordBuilder {
	return &RecordBuilder{
		schema: schema,
		values: make([]interface{}, schema.NumFields()),
		set:    make([]bool, schema.NumFields()),
	}
}

// Set assigns a value to the named field. Accepted Go types follow the
// field's type tag: string for String, int32 or int for Int, bool for
// Boolean, and string, *string or nil for NullableString. Setting a
// NullableString field to nil marks it absent, which Build resolves
// against the field default.
func (b *RecordBuilder) Set(name string, value interface{}) error {
	i, ok := b.schema.FieldIndex(name)
	if !ok {
		return fmt.Errorf("record %q has no field %q", b.schema.Name(), name)
	}
	v, err := coerceValue(b.schema.Field(i), value)
	if err != nil {
		return err
	}
	b.values[i] = v
	b.set[i] = true
	return nil
}

// Build validates that every non-nullable field has been set, resolves
// absent nullable fields against their defaults and returns the
// completed Record. The builder may be reused afterwards; the returned
// Record does not share state with it.
func (b *RecordBuilder) Build() (*Record, error) {
	values := make([]interface{}, len(b.values))
	for i, f := range b.schema.fields {
		if !b.set[i] {
			if f.Type != NullableString {
				return nil, fmt.Errorf("field %q is not set", f.Name)
			}
			values[i] = nil
		} else {
			values[i] = b.values[i]
		}
		if f.Type == NullableString && values[i] == nil && f.Default != nil {
			values[i] = *f.Default
		}
	}
	return &Record{schema: b.schema, values: values}, nil
}

// coerceValue normalizes value to the canonical in-memory form for the
// field type: string, int32, bool, or nil for an absent NullableString.
func coerceValue(f Field, value interface{}) (interface{}, error) {
	switch f.Type {
	case String:
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(f, value)
		}
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("field %q value is not valid UTF-8", f.Name)
		}
		return s, nil
	case Int:
		switch v := value.(type) {
		case int32:
			return v, nil
		case int:
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("field %q value %d out of 32-bit range", f.Name, v)
			}
			return int32(v), nil
		case int64:
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("field %q value %d out of 32-bit range", f.Name, v)
			}
			return int32(v), nil
		}
		return nil, typeMismatch(f, value)
	case Boolean:
		v, ok := value.(bool)
		if !ok {
			return nil, typeMismatch(f, value)
		}
		return v, nil
	case NullableString:
		switch v := value.(type) {
		case nil:
			return nil, nil
		case string:
			if !utf8.ValidString(v) {
				return nil, fmt.Errorf("field %q value is not valid UTF-8", f.Name)
			}
			return v, nil
		case *string:
			if v == nil {
				return nil, nil
			}
			if !utf8.ValidString(*v) {
				return nil, fmt.Errorf("field %q value is not valid UTF-8", f.Name)
			}
			return *v, nil
		}
		return nil, typeMismatch(f, value)
	}
	return nil, fmt.Errorf("field %q has unknown type %q", f.Name, string(f.Type))
}

func typeMismatch(f Field, value interface{}) error {
	return fmt.Errorf("field %q of type %q cannot hold %T", f.Name, string(f.Type), value)
}
