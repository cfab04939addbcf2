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

// Package serde implements framed single-message serialization for
// streaming consumers that are handed one byte payload at a time. Each
// payload opens with a magic byte and a big-endian schema ID, so the
// deserializer can recover the writer schema for any message from a
// SchemaStore and hand back either a generic record or, through a
// MessageFactory, a typed struct.
package serde

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/avroline/avroline-go/avro"
)

// magicByte is prepended to the serialized payload
const magicByte byte = 0x0

// headerSize is the framing overhead: the magic byte plus the schema ID
const headerSize = 5

// MessageFactory is a factory function, which should return a pointer to
// an instance into which we will unmarshal wire data. The name is the
// record name of the writer schema.
type MessageFactory func(name string) (interface{}, error)

// Serializer represents a serializer
type Serializer interface {
	// Serialize will serialize the given message: a *avro.Record, a
	// map with one entry per schema field, or a struct whose fields
	// match the schema.
	Serialize(msg interface{}) ([]byte, error)
	Close()
}

// Deserializer represents a deserializer
type Deserializer interface {
	// Deserialize will call the MessageFactory, when one is set, to
	// create an object into which we will unmarshal data; without a
	// factory it returns a *avro.Record.
	Deserialize(payload []byte) (interface{}, error)
	// DeserializeInto will unmarshal data into the given object.
	DeserializeInto(payload []byte, msg interface{}) error
	Close()
}

// Serde is a common instance for both the serializers and deserializers
type Serde struct {
	Store *SchemaStore
}

// BaseSerializer represents basic serializer info
type BaseSerializer struct {
	Serde
	Conf *SerializerConfig
}

// BaseDeserializer represents basic deserializer info
type BaseDeserializer struct {
	Serde
	Conf           *DeserializerConfig
	MessageFactory MessageFactory
}

// ConfigureSerializer configures the Serializer
func (s *BaseSerializer) ConfigureSerializer(store *SchemaStore, conf *SerializerConfig) error {
	if store == nil {
		return fmt.Errorf("schema store missing")
	}
	s.Store = store
	s.Conf = conf
	return nil
}

// ConfigureDeserializer configures the Deserializer
func (s *BaseDeserializer) ConfigureDeserializer(store *SchemaStore, conf *DeserializerConfig) error {
	if store == nil {
		return fmt.Errorf("schema store missing")
	}
	s.Store = store
	s.Conf = conf
	return nil
}

// WriteBytes writes the serialized payload prepended by the magicByte
// and the schema ID
func (s *BaseSerializer) WriteBytes(id int, msgBytes []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := buf.WriteByte(magicByte)
	if err != nil {
		return nil, err
	}
	idBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(idBytes, uint32(id))
	_, err = buf.Write(idBytes)
	if err != nil {
		return nil, err
	}
	_, err = buf.Write(msgBytes)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetSchema returns the writer schema and schema ID for a payload
func (s *BaseDeserializer) GetSchema(payload []byte) (*avro.Schema, int, error) {
	if len(payload) < headerSize {
		return nil, 0, fmt.Errorf("payload of %d bytes is too short to carry a header", len(payload))
	}
	if payload[0] != magicByte {
		return nil, 0, fmt.Errorf("unknown magic byte")
	}
	id := int(binary.BigEndian.Uint32(payload[1:headerSize]))
	schema, err := s.Store.GetByID(id)
	if err != nil {
		return nil, 0, err
	}
	return schema, id, nil
}

// Close closes the Serde
func (s *Serde) Close() {
}
