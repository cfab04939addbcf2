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
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/modern-go/reflect2"

	"github.com/avroline/avroline-go/cache"
)

// structPlan binds every schema field to a struct field. Plans are built
// once per Go type and cached under the type's rtype, so the reflective
// matching work is paid only on the first call.
type structPlan struct {
	fields []planField
}

type planField struct {
	index []int
}

// DecodeInto decodes exactly one record from data into the struct pointed
// to by v. Struct fields are matched to schema fields by `avro:"name"`
// tag, then by exact name, then case-insensitively; every schema field
// must find a match, extra struct fields are left alone. Field Go types
// follow the type tags: string for String, int32 or int for Int, bool
// for Boolean and *string for NullableString, where nil marks an absent
// value. Like Decode, the record must span the whole input.
func (d *Decoder) DecodeInto(data []byte, v interface{}) error {
	rv, err := structTarget(v)
	if err != nil {
		return err
	}
	plan, err := cachedPlan(d.plans, d.schema, rv.Type())
	if err != nil {
		return err
	}
	rec, err := d.Decode(data)
	if err != nil {
		return err
	}
	for i := range d.schema.fields {
		f := &d.schema.fields[i]
		fv := rv.FieldByIndex(plan.fields[i].index)
		switch f.Type {
		case String:
			fv.SetString(rec.values[i].(string))
		case Int:
			fv.SetInt(int64(rec.values[i].(int32)))
		case Boolean:
			fv.SetBool(rec.values[i].(bool))
		case NullableString:
			if rec.values[i] == nil {
				fv.Set(reflect.Zero(fv.Type()))
			} else {
				p := reflect.New(fv.Type().Elem())
				p.Elem().SetString(rec.values[i].(string))
				fv.Set(p)
			}
		}
	}
	return nil
}

// EncodeValue encodes a struct or struct pointer into its binary form,
// the encode counterpart of DecodeInto, with the same field matching and
// the same per-type plan cache.
func (e *Encoder) EncodeValue(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil struct pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("value must be a struct or struct pointer, got %T", v)
	}
	plan, err := cachedPlan(e.plans, e.schema, rv.Type())
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(e.schema.fields))
	for i := range e.schema.fields {
		f := &e.schema.fields[i]
		fv := rv.FieldByIndex(plan.fields[i].index)
		switch f.Type {
		case String:
			s := fv.String()
			if !utf8.ValidString(s) {
				return nil, fmt.Errorf("field %q value is not valid UTF-8", f.Name)
			}
			values[i] = s
		case Int:
			n := fv.Int()
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, fmt.Errorf("field %q value %d out of 32-bit range", f.Name, n)
			}
			values[i] = int32(n)
		case Boolean:
			values[i] = fv.Bool()
		case NullableString:
			if fv.IsNil() {
				values[i] = nil
			} else {
				s := fv.Elem().String()
				if !utf8.ValidString(s) {
					return nil, fmt.Errorf("field %q value is not valid UTF-8", f.Name)
				}
				values[i] = s
			}
		}
	}
	return e.encodeValues(values), nil
}

func structTarget(v interface{}) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("target must be a non-nil struct pointer, got %T", v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("target must point to a struct, got %T", v)
	}
	return rv, nil
}

func cachedPlan(plans *cache.MapCache, schema *Schema, t reflect.Type) (*structPlan, error) {
	key := reflect2.Type2(t).RType()
	if p, ok := plans.Get(key); ok {
		return p.(*structPlan), nil
	}
	p, err := buildPlan(schema, t)
	if err != nil {
		return nil, err
	}
	plans.Put(key, p)
	return p, nil
}

func buildPlan(schema *Schema, t reflect.Type) (*structPlan, error) {
	byTag := make(map[string]int)
	byName := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup("avro"); ok {
			name := strings.Split(tag, ",")[0]
			if name == "-" {
				continue
			}
			if name != "" {
				if _, dup := byTag[name]; dup {
					return nil, fmt.Errorf("%s has two fields tagged %q", t, name)
				}
				byTag[name] = i
				continue
			}
		}
		byName[sf.Name] = i
	}
	plan := &structPlan{fields: make([]planField, schema.NumFields())}
	for i := range schema.fields {
		f := &schema.fields[i]
		si, err := matchStructField(t, byTag, byName, f.Name)
		if err != nil {
			return nil, err
		}
		sf := t.Field(si)
		if err := checkStructField(f, sf); err != nil {
			return nil, err
		}
		plan.fields[i] = planField{index: sf.Index}
	}
	return plan, nil
}

func matchStructField(t reflect.Type, byTag, byName map[string]int, name string) (int, error) {
	if i, ok := byTag[name]; ok {
		return i, nil
	}
	if i, ok := byName[name]; ok {
		return i, nil
	}
	found := -1
	for candidate, i := range byName {
		if strings.EqualFold(candidate, name) {
			if found >= 0 {
				return 0, fmt.Errorf("%s has ambiguous matches for field %q", t, name)
			}
			found = i
		}
	}
	if found < 0 {
		return 0, fmt.Errorf("%s has no field for %q", t, name)
	}
	return found, nil
}

func checkStructField(f *Field, sf reflect.StructField) error {
	switch f.Type {
	case String:
		if sf.Type.Kind() == reflect.String {
			return nil
		}
	case Int:
		if k := sf.Type.Kind(); k == reflect.Int32 || k == reflect.Int {
			return nil
		}
	case Boolean:
		if sf.Type.Kind() == reflect.Bool {
			return nil
		}
	case NullableString:
		if sf.Type.Kind() == reflect.Pointer && sf.Type.Elem().Kind() == reflect.String {
			return nil
		}
	}
	return fmt.Errorf("struct field %s %s cannot hold a %q value",
		sf.Name, sf.Type, string(f.Type))
}
