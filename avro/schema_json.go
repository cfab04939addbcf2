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
	"github.com/goccy/go-json"
)

// jsonRecord is the JSON projection of a Schema: an Apache Avro record
// declaration restricted to the supported field types.
type jsonRecord struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []jsonField `json:"fields"`
}

type jsonField struct {
	Name    string          `json:"name"`
	Type    json.RawMessage `json:"type"`
	Default json.RawMessage `json:"default,omitempty"`
}

// ParseSchema parses an Avro record declaration in JSON form into a
// Schema. The declaration is restricted to the supported subset: field
// types "string", "int", "boolean" and the union ["null","string"].
// A union field may declare a default of null or a string. Attributes
// outside the subset that do not affect decoding (namespace, doc,
// aliases, field order) are ignored; anything else, malformed JSON
// included, yields ErrInvalidSchema.
func ParseSchema(declaration string) (*Schema, error) {
	var rec jsonRecord
	if err := json.Unmarshal([]byte(declaration), &rec); err != nil {
		return nil, newError(ErrInvalidSchema, "malformed schema JSON: %v", err)
	}
	if rec.Type != "record" {
		return nil, newError(ErrInvalidSchema, "schema type %q is not a record", rec.Type)
	}
	fields := make([]Field, len(rec.Fields))
	for i, jf := range rec.Fields {
		f, err := parseField(jf)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return NewSchema(rec.Name, fields)
}

func parseField(jf jsonField) (Field, error) {
	f := Field{Name: jf.Name}
	var prim string
	if err := json.Unmarshal(jf.Type, &prim); err == nil {
		switch prim {
		case "string":
			f.Type = String
		case "int":
			f.Type = Int
		case "boolean":
			f.Type = Boolean
		default:
			return f, newError(ErrInvalidSchema, "field %q has unsupported type %q", jf.Name, prim)
		}
		if jf.Default != nil {
			return f, newError(ErrInvalidSchema, "field %q of type %q cannot carry a default", jf.Name, prim)
		}
		return f, nil
	}
	var union []string
	if err := json.Unmarshal(jf.Type, &union); err != nil {
		return f, newError(ErrInvalidSchema, "field %q has unsupported type %s", jf.Name, string(jf.Type))
	}
	if len(union) != 2 || union[0] != "null" || union[1] != "string" {
		return f, newError(ErrInvalidSchema, "field %q has unsupported union %s", jf.Name, string(jf.Type))
	}
	f.Type = NullableString
	if jf.Default != nil {
		var d *string
		if err := json.Unmarshal(jf.Default, &d); err != nil {
			return f, newError(ErrInvalidSchema, "field %q has non-string default %s", jf.Name, string(jf.Default))
		}
		f.Default = d
	}
	return f, nil
}

// String returns the canonical JSON form of the schema, a valid Apache
// Avro record declaration. Nullable fields always render with
// "default":null; a declared string default is a decode-side concern
// and does not appear in the JSON projection.
func (s *Schema) String() string {
	return s.canonical
}

var nullJSON = json.RawMessage("null")

func canonicalJSON(s *Schema) string {
	rec := jsonRecord{
		Type:   "record",
		Name:   s.name,
		Fields: make([]jsonField, len(s.fields)),
	}
	for i, f := range s.fields {
		jf := jsonField{Name: f.Name}
		switch f.Type {
		case String:
			jf.Type = json.RawMessage(`"string"`)
		case Int:
			jf.Type = json.RawMessage(`"int"`)
		case Boolean:
			jf.Type = json.RawMessage(`"boolean"`)
		case NullableString:
			jf.Type = json.RawMessage(`["null","string"]`)
			jf.Default = nullJSON
		}
		rec.Fields[i] = jf
	}
	b, _ := json.Marshal(&rec)
	return string(b)
}
