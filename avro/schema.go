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

import "crypto/sha256"

// Type represents the type tag of a schema field
type Type string

const (
	// String denotes a UTF-8 string field
	String Type = "string"
	// Int denotes a 32-bit signed integer field
	Int Type = "int"
	// Boolean denotes a boolean field
	Boolean Type = "boolean"
	// NullableString denotes a string field whose value may be absent.
	// An absent value takes the field default, which may itself be "no value".
	NullableString Type = "nullable-string"
)

func (t Type) valid() bool {
	switch t {
	case String, Int, Boolean, NullableString:
		return true
	}
	return false
}

// Field represents a single field descriptor of a Schema
type Field struct {
	// Name is the field name, unique within the schema
	Name string
	// Type is the field type tag
	Type Type
	// Default is the value an absent NullableString field decodes to.
	// nil means the field decodes to "no value". Only NullableString
	// fields may carry a default.
	Default *string
}

// Schema represents an ordered sequence of field descriptors.
// Field order is load-bearing: the wire format is positional, not
// name-tagged, so records are encoded and decoded strictly in the
// declared field order.
//
// A Schema is immutable once constructed and may be shared by any number
// of concurrent decode and encode calls without locking.
type Schema struct {
	name      string
	fields    []Field
	index     map[string]int
	canonical string
	fp        [32]byte
}

// NewSchema creates a Schema from a record name and an ordered field list.
// All validation happens here, before any input byte is consumed: an
// invalid name, an empty field list, a duplicate field name, an unknown
// type tag or a default on a non-nullable field all yield ErrInvalidSchema.
func NewSchema(name string, fields []Field) (*Schema, error) {
	if !isValidName(name) {
		return nil, newError(ErrInvalidSchema, "invalid record name %q", name)
	}
	if len(fields) == 0 {
		return nil, newError(ErrInvalidSchema, "schema %q has an empty field list", name)
	}
	s := &Schema{
		name:   name,
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if !isValidName(f.Name) {
			return nil, newError(ErrInvalidSchema, "invalid field name %q", f.Name)
		}
		if !f.Type.valid() {
			return nil, newError(ErrInvalidSchema, "field %q has unknown type %q", f.Name, string(f.Type))
		}
		if f.Default != nil && f.Type != NullableString {
			return nil, newError(ErrInvalidSchema, "field %q of type %q cannot carry a default", f.Name, string(f.Type))
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, newError(ErrInvalidSchema, "duplicate field name %q", f.Name)
		}
		if f.Default != nil {
			// own copy, callers must not be able to mutate the schema
			d := *f.Default
			f.Default = &d
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	s.canonical = canonicalJSON(s)
	s.fp = sha256.Sum256([]byte(fingerprintInput(s)))
	return s, nil
}

// fingerprintInput extends the canonical JSON with the declared string
// defaults. Defaults do not appear in the JSON projection, but two
// schemas that decode differently must not share a fingerprint.
func fingerprintInput(s *Schema) string {
	in := s.canonical
	for _, f := range s.fields {
		if f.Default != nil {
			in += "\x00" + f.Name + "\x00" + *f.Default
		}
	}
	return in
}

// Name returns the record name of the schema
func (s *Schema) Name() string {
	return s.name
}

// NumFields returns the number of fields in the schema
func (s *Schema) NumFields() int {
	return len(s.fields)
}

// Field returns the field descriptor at position i
func (s *Schema) Field(i int) Field {
	return copyField(s.fields[i])
}

// Fields returns a copy of the ordered field list
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	for i, f := range s.fields {
		fields[i] = copyField(f)
	}
	return fields
}

// copyField detaches the default pointer so callers cannot write into
// the schema through a returned descriptor
func copyField(f Field) Field {
	if f.Default != nil {
		d := *f.Default
		f.Default = &d
	}
	return f
}

// FieldIndex returns the position of the named field and a bool that is
// false when the schema has no such field
func (s *Schema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Fingerprint returns the SHA-256 digest of the canonical JSON form of
// the schema together with its declared defaults. Two schemas with the
// same fingerprint decode and encode identically; the fingerprint is the
// cache and registry identity used throughout this module.
func (s *Schema) Fingerprint() [32]byte {
	return s.fp
}

// isValidName reports whether name is a valid record or field name:
// a letter or underscore followed by letters, digits and underscores.
func isValidName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
