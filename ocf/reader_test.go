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
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avroline/avroline-go/avro"
)

// testSync is the fixed marker used by hand-assembled containers
var testSync = [syncSize]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', 'a', 'b', 'c', 'd', 'e', 'f',
}

func eventSchema(t *testing.T) *avro.Schema {
	t.Helper()
	s, err := avro.NewSchema("Event", []avro.Field{
		{Name: "user", Type: avro.String},
		{Name: "active", Type: avro.Boolean},
	})
	require.NoError(t, err)
	return s
}

func encodeEvent(t *testing.T, s *avro.Schema, user string, active bool) []byte {
	t.Helper()
	b := avro.NewRecordBuilder(s)
	require.NoError(t, b.Set("user", user))
	require.NoError(t, b.Set("active", active))
	rec, err := b.Build()
	require.NoError(t, err)
	data, err := avro.Encode(s, rec)
	require.NoError(t, err)
	return data
}

// containerHeader assembles a header for s with the fixed test marker
func containerHeader(s *avro.Schema) []byte {
	h := append([]byte(nil), magic[:]...)
	h = avro.AppendLong(h, 2)
	h = appendMetaPair(h, schemaKey, []byte(s.String()))
	h = appendMetaPair(h, codecKey, []byte(CodecNull))
	h = avro.AppendLong(h, 0)
	return append(h, testSync[:]...)
}

// rawBlock assembles a block with an explicit record count, closed by the
// given marker
func rawBlock(count int64, data []byte, marker [syncSize]byte) []byte {
	b := avro.AppendLong(nil, count)
	b = avro.AppendLong(b, int64(len(data)))
	b = append(b, data...)
	return append(b, marker[:]...)
}

func block(records ...[]byte) []byte {
	var data []byte
	for _, r := range records {
		data = append(data, r...)
	}
	return rawBlock(int64(len(records)), data, testSync)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func requireUser(t *testing.T, rec *avro.Record, err error, user string) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, rec)
	got, err := rec.String("user")
	require.NoError(t, err)
	require.Equal(t, user, got)
}

func requireReadCode(t *testing.T, r *Reader, code avro.ErrorCode) {
	t.Helper()
	rec, err := r.Read()
	require.Nil(t, rec)
	require.Error(t, err)
	got, ok := avro.CodeOf(err)
	require.True(t, ok, "error %v carries no code", err)
	require.Equal(t, code, got, "error %v", err)
}

func TestReaderHandAssembledContainer(t *testing.T) {
	s := eventSchema(t)
	stream := concat(
		containerHeader(s),
		block(encodeEvent(t, s, "u1", true), encodeEvent(t, s, "u2", false)),
		block(encodeEvent(t, s, "u3", true)),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, CodecNull, r.Codec())
	assert.Equal(t, s.Fingerprint(), r.Schema().Fingerprint())

	for _, want := range []string{"u1", "u2", "u3"} {
		rec, err := r.Read()
		requireUser(t, rec, err, want)
	}
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderSkipsEmptyBlock(t *testing.T) {
	s := eventSchema(t)
	stream := concat(
		containerHeader(s),
		rawBlock(0, nil, testSync),
		block(encodeEvent(t, s, "u1", true)),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)
	rec, err := r.Read()
	requireUser(t, rec, err, "u1")
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderReportsCorruptRecordAndContinues(t *testing.T) {
	s := eventSchema(t)
	// a valid string then 0x02 where a boolean byte belongs
	badRecord := []byte{0x02, 'u', 0x02}
	stream := concat(
		containerHeader(s),
		block(encodeEvent(t, s, "u1", true)),
		block(encodeEvent(t, s, "u2", false)),
		block(badRecord),
		block(encodeEvent(t, s, "u3", true)),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	rec, err := r.Read()
	requireUser(t, rec, err, "u1")
	rec, err = r.Read()
	requireUser(t, rec, err, "u2")
	requireReadCode(t, r, avro.ErrInvalidEncoding)
	rec, err = r.Read()
	requireUser(t, rec, err, "u3")
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderDropsRestOfCorruptBlock(t *testing.T) {
	s := eventSchema(t)
	// the bad record sits first, the rest of its block is unreachable
	data := concat([]byte{0x02, 'u', 0x07}, encodeEvent(t, s, "lost", true))
	stream := concat(
		containerHeader(s),
		rawBlock(2, data, testSync),
		block(encodeEvent(t, s, "u2", false)),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	requireReadCode(t, r, avro.ErrInvalidEncoding)
	rec, err := r.Read()
	requireUser(t, rec, err, "u2")
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderReportsStrayBlockBytes(t *testing.T) {
	s := eventSchema(t)
	// block claims one record but carries two
	data := concat(encodeEvent(t, s, "u1", true), encodeEvent(t, s, "u2", false))
	stream := concat(
		containerHeader(s),
		rawBlock(1, data, testSync),
		block(encodeEvent(t, s, "u3", true)),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	rec, err := r.Read()
	requireUser(t, rec, err, "u1")
	requireReadCode(t, r, avro.ErrInvalidEncoding)
	rec, err = r.Read()
	requireUser(t, rec, err, "u3")
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderResyncsAfterGarbage(t *testing.T) {
	s := eventSchema(t)
	garbage := bytes.Repeat([]byte{0xee}, 40)
	stream := concat(
		containerHeader(s),
		block(encodeEvent(t, s, "u1", true)),
		garbage,
		testSync[:],
		block(encodeEvent(t, s, "u2", false)),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	rec, err := r.Read()
	requireUser(t, rec, err, "u1")
	requireReadCode(t, r, avro.ErrInvalidEncoding)
	rec, err = r.Read()
	requireUser(t, rec, err, "u2")
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderResyncSwallowsUpToNextMarker(t *testing.T) {
	s := eventSchema(t)
	// the second block carries a foreign marker; recovery scans forward
	// and everything before the next good marker is lost with it
	var wrongSync [syncSize]byte
	copy(wrongSync[:], bytes.Repeat([]byte{0x5a}, syncSize))
	stream := concat(
		containerHeader(s),
		block(encodeEvent(t, s, "u1", true)),
		rawBlock(1, encodeEvent(t, s, "u2", false), wrongSync),
		block(encodeEvent(t, s, "u3", true)),
		block(encodeEvent(t, s, "u4", false)),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	rec, err := r.Read()
	requireUser(t, rec, err, "u1")
	requireReadCode(t, r, avro.ErrInvalidEncoding)
	rec, err = r.Read()
	requireUser(t, rec, err, "u4")
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderTerminatesWhenNoMarkerLeft(t *testing.T) {
	s := eventSchema(t)
	stream := concat(
		containerHeader(s),
		block(encodeEvent(t, s, "u1", true), encodeEvent(t, s, "u2", false)),
		bytes.Repeat([]byte{0xee}, 24),
	)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	rec, err := r.Read()
	requireUser(t, rec, err, "u1")
	rec, err = r.Read()
	requireUser(t, rec, err, "u2")
	requireReadCode(t, r, avro.ErrInvalidEncoding)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderTruncatedBlock(t *testing.T) {
	s := eventSchema(t)
	full := block(encodeEvent(t, s, "u1", true))
	stream := concat(containerHeader(s), full[:len(full)-syncSize-1])

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	requireReadCode(t, r, avro.ErrTruncated)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderHeaderErrors(t *testing.T) {
	s := eventSchema(t)

	requireNewReaderCode := func(t *testing.T, stream []byte, code avro.ErrorCode) {
		t.Helper()
		_, err := NewReader(bytes.NewReader(stream))
		require.Error(t, err)
		got, ok := avro.CodeOf(err)
		require.True(t, ok, "error %v carries no code", err)
		require.Equal(t, code, got)
	}

	t.Run("empty stream", func(t *testing.T) {
		requireNewReaderCode(t, nil, avro.ErrTruncated)
	})
	t.Run("wrong magic", func(t *testing.T) {
		requireNewReaderCode(t, []byte("PK\x03\x04....."), avro.ErrInvalidEncoding)
	})
	t.Run("no schema metadata", func(t *testing.T) {
		h := append([]byte(nil), magic[:]...)
		h = avro.AppendLong(h, 0)
		h = append(h, testSync[:]...)
		requireNewReaderCode(t, h, avro.ErrInvalidSchema)
	})
	t.Run("unparseable schema", func(t *testing.T) {
		h := append([]byte(nil), magic[:]...)
		h = avro.AppendLong(h, 1)
		h = appendMetaPair(h, schemaKey, []byte(`{"type":"record"`))
		h = avro.AppendLong(h, 0)
		h = append(h, testSync[:]...)
		requireNewReaderCode(t, h, avro.ErrInvalidSchema)
	})
	t.Run("unknown codec", func(t *testing.T) {
		h := append([]byte(nil), magic[:]...)
		h = avro.AppendLong(h, 2)
		h = appendMetaPair(h, schemaKey, []byte(s.String()))
		h = appendMetaPair(h, codecKey, []byte("zstandard"))
		h = avro.AppendLong(h, 0)
		h = append(h, testSync[:]...)
		_, err := NewReader(bytes.NewReader(h))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "codec")
	})
	t.Run("header cut short", func(t *testing.T) {
		h := containerHeader(s)
		requireNewReaderCode(t, h[:len(h)-4], avro.ErrTruncated)
	})
}

func TestReaderMetadata(t *testing.T) {
	s := eventSchema(t)
	h := append([]byte(nil), magic[:]...)
	h = avro.AppendLong(h, 3)
	h = appendMetaPair(h, schemaKey, []byte(s.String()))
	h = appendMetaPair(h, codecKey, []byte(CodecNull))
	h = appendMetaPair(h, "app.owner", []byte("billing"))
	h = avro.AppendLong(h, 0)
	h = append(h, testSync[:]...)

	r, err := NewReader(bytes.NewReader(h))
	require.NoError(t, err)

	meta := r.Metadata()
	assert.Equal(t, []byte("billing"), meta["app.owner"])
	assert.Equal(t, []byte(s.String()), meta[schemaKey])

	// the returned map is a copy
	meta["app.owner"][0] = 'X'
	assert.Equal(t, []byte("billing"), r.Metadata()["app.owner"])
}

func TestReaderMetadataNegativeRun(t *testing.T) {
	s := eventSchema(t)
	pair := appendMetaPair(nil, schemaKey, []byte(s.String()))

	// a negative count run carries its byte size after the count
	h := append([]byte(nil), magic[:]...)
	h = avro.AppendLong(h, -1)
	h = avro.AppendLong(h, int64(len(pair)))
	h = append(h, pair...)
	h = avro.AppendLong(h, 0)
	h = append(h, testSync[:]...)

	r, err := NewReader(bytes.NewReader(h))
	require.NoError(t, err)
	assert.Equal(t, s.Fingerprint(), r.Schema().Fingerprint())
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestReaderStickyIOError(t *testing.T) {
	s := eventSchema(t)
	stream := concat(containerHeader(s), block(encodeEvent(t, s, "u1", true)))
	ioErr := errors.New("read: device not ready")

	r, err := NewReader(&failingReader{data: stream, err: ioErr})
	require.NoError(t, err)

	rec, err := r.Read()
	requireUser(t, rec, err, "u1")

	_, err = r.Read()
	assert.ErrorIs(t, err, ioErr)
	_, err = r.Read()
	assert.ErrorIs(t, err, ioErr)
}
