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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	s := userSchema(t)

	data, err := Encode(s, buildUser(t, s, "Alice", 34, "a@b.co"))
	require.NoError(t, err)
	assert.Equal(t, aliceBytes, data)

	data, err = Encode(s, buildUser(t, s, "Alice", 34, nil))
	require.NoError(t, err)
	assert.Equal(t, aliceNoEmail, data)
}

func TestEncodeEmptyStringIsNotAbsent(t *testing.T) {
	s, err := NewSchema("Tag", []Field{{Name: "label", Type: NullableString}})
	require.NoError(t, err)

	present, err := Encode(s, buildRecord(t, s, map[string]interface{}{"label": ""}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00}, present)

	absent, err := Encode(s, buildRecord(t, s, map[string]interface{}{"label": nil}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, absent)
}

func buildRecord(t *testing.T, s *Schema, values map[string]interface{}) *Record {
	t.Helper()
	b := NewRecordBuilder(s)
	for name, v := range values {
		require.NoError(t, b.Set(name, v))
	}
	rec, err := b.Build()
	require.NoError(t, err)
	return rec
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s, err := NewSchema("Everything", []Field{
		{Name: "title", Type: String},
		{Name: "count", Type: Int},
		{Name: "flag", Type: Boolean},
		{Name: "note", Type: NullableString},
	})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		values map[string]interface{}
	}{
		{
			name: "plain values",
			values: map[string]interface{}{
				"title": "hello", "count": 7, "flag": true, "note": "n",
			},
		},
		{
			name: "extreme ints",
			values: map[string]interface{}{
				"title": "x", "count": int32(2147483647), "flag": false, "note": nil,
			},
		},
		{
			name: "minimum int",
			values: map[string]interface{}{
				"title": "x", "count": int32(-2147483648), "flag": false, "note": nil,
			},
		},
		{
			name: "empty strings",
			values: map[string]interface{}{
				"title": "", "count": 0, "flag": false, "note": "",
			},
		},
		{
			name: "multibyte text",
			values: map[string]interface{}{
				"title": "héllo wörld ☺", "count": -1, "flag": true, "note": "日本語",
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rec := buildRecord(t, s, testCase.values)
			data, err := Encode(s, rec)
			require.NoError(t, err)
			decoded, err := Decode(s, data)
			require.NoError(t, err)
			assert.True(t, rec.Equal(decoded))
		})
	}
}

func TestEncodeSchemaMismatch(t *testing.T) {
	users := userSchema(t)
	enc, err := NewEncoder(users)
	require.NoError(t, err)

	other, err := NewSchema("Other", []Field{{Name: "x", Type: Int}})
	require.NoError(t, err)
	rec := buildRecord(t, other, map[string]interface{}{"x": 1})
	_, err = enc.Encode(rec)
	assert.Error(t, err)

	// a separately constructed schema with the same shape is accepted
	twin := buildUser(t, userSchema(t), "Alice", 34, nil)
	data, err := enc.Encode(twin)
	require.NoError(t, err)
	assert.Equal(t, aliceNoEmail, data)

	_, err = enc.Encode(nil)
	assert.Error(t, err)
}

func TestEncodeMap(t *testing.T) {
	s := userSchema(t)
	enc, err := NewEncoder(s)
	require.NoError(t, err)

	data, err := enc.EncodeMap(map[string]interface{}{
		"name": "Alice", "age": 34, "email": "a@b.co",
	})
	require.NoError(t, err)
	assert.Equal(t, aliceBytes, data)

	// a missing nullable key encodes as absent
	data, err = enc.EncodeMap(map[string]interface{}{
		"name": "Alice", "age": 34,
	})
	require.NoError(t, err)
	assert.Equal(t, aliceNoEmail, data)

	_, err = enc.EncodeMap(map[string]interface{}{"name": "Alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"age"`)

	_, err = enc.EncodeMap(map[string]interface{}{
		"name": "Alice", "age": 34, "shoe": 44,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"shoe"`)

	_, err = enc.EncodeMap(map[string]interface{}{
		"name": "Alice", "age": "thirty-four",
	})
	assert.Error(t, err)
}

func TestNewEncoderNilSchema(t *testing.T) {
	_, err := NewEncoder(nil)
	requireCode(t, err, ErrInvalidSchema)
}
