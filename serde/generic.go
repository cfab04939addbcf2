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

package serde

import (
	"fmt"

	"github.com/avroline/avroline-go/avro"
	"github.com/avroline/avroline-go/cache"
)

// GenericSerializer serializes messages against one schema, framing each
// payload with the schema's store ID. Safe for concurrent use.
type GenericSerializer struct {
	BaseSerializer
	enc *avro.Encoder
	id  int
}

// NewGenericSerializer binds a serializer to a schema and resolves the
// schema's ID against the store: with AutoRegisterSchemas the schema is
// registered, with UseSchemaID the given ID must already name a schema
// with the same fingerprint, and otherwise the schema must have been
// registered before.
func NewGenericSerializer(store *SchemaStore, schema *avro.Schema, conf *SerializerConfig) (*GenericSerializer, error) {
	if conf == nil {
		conf = NewSerializerConfig()
	}
	s := &GenericSerializer{}
	if err := s.ConfigureSerializer(store, conf); err != nil {
		return nil, err
	}
	enc, err := avro.NewEncoder(schema)
	if err != nil {
		return nil, err
	}
	s.enc = enc
	s.id, err = s.resolveID(schema)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GenericSerializer) resolveID(schema *avro.Schema) (int, error) {
	switch {
	case s.Conf.UseSchemaID >= 0:
		registered, err := s.Store.GetByID(s.Conf.UseSchemaID)
		if err != nil {
			return -1, err
		}
		if registered.Fingerprint() != schema.Fingerprint() {
			return -1, fmt.Errorf("schema ID %d names a different schema", s.Conf.UseSchemaID)
		}
		return s.Conf.UseSchemaID, nil
	case s.Conf.AutoRegisterSchemas:
		return s.Store.Register(schema)
	default:
		return s.Store.IDFor(schema)
	}
}

// ID returns the store ID the serializer frames its payloads with
func (s *GenericSerializer) ID() int {
	return s.id
}

// Serialize will serialize the given message: a *avro.Record built
// against the serializer schema, a map with one entry per schema field,
// or a struct whose fields match the schema.
func (s *GenericSerializer) Serialize(msg interface{}) ([]byte, error) {
	var body []byte
	var err error
	switch m := msg.(type) {
	case nil:
		return nil, fmt.Errorf("nil message")
	case *avro.Record:
		body, err = s.enc.Encode(m)
	case map[string]interface{}:
		body, err = s.enc.EncodeMap(m)
	default:
		body, err = s.enc.EncodeValue(msg)
	}
	if err != nil {
		return nil, err
	}
	return s.WriteBytes(s.id, body)
}

// GenericDeserializer deserializes framed payloads, resolving the writer
// schema by the framed ID and keeping a bounded cache of prepared
// decoders. Safe for concurrent use once configured.
type GenericDeserializer struct {
	BaseDeserializer
	decoders *cache.LRUCache
}

// NewGenericDeserializer creates a deserializer over the given store.
// Set MessageFactory on the result to have Deserialize produce typed
// structs instead of generic records.
func NewGenericDeserializer(store *SchemaStore, conf *DeserializerConfig) (*GenericDeserializer, error) {
	if conf == nil {
		conf = NewDeserializerConfig()
	}
	d := &GenericDeserializer{}
	if err := d.ConfigureDeserializer(store, conf); err != nil {
		return nil, err
	}
	decoders, err := cache.NewLRUCache(conf.DecoderCacheCapacity)
	if err != nil {
		return nil, err
	}
	d.decoders = decoders
	return d, nil
}

// Deserialize will call the MessageFactory, when one is set, to create
// an object into which we will unmarshal data; without a factory it
// returns the decoded *avro.Record. Decode failures surface with the
// avro error codes untouched.
func (d *GenericDeserializer) Deserialize(payload []byte) (interface{}, error) {
	dec, err := d.decoderFor(payload)
	if err != nil {
		return nil, err
	}
	body := payload[headerSize:]
	if d.MessageFactory != nil {
		msg, err := d.MessageFactory(dec.Schema().Name())
		if err != nil {
			return nil, err
		}
		if err := dec.DecodeInto(body, msg); err != nil {
			return nil, err
		}
		return msg, nil
	}
	return dec.Decode(body)
}

// DeserializeInto will unmarshal data into the given object.
func (d *GenericDeserializer) DeserializeInto(payload []byte, msg interface{}) error {
	dec, err := d.decoderFor(payload)
	if err != nil {
		return err
	}
	return dec.DecodeInto(payload[headerSize:], msg)
}

func (d *GenericDeserializer) decoderFor(payload []byte) (*avro.Decoder, error) {
	schema, id, err := d.GetSchema(payload)
	if err != nil {
		return nil, err
	}
	if cached, ok := d.decoders.Get(id); ok {
		return cached.(*avro.Decoder), nil
	}
	dec, err := avro.NewDecoder(schema)
	if err != nil {
		return nil, err
	}
	d.decoders.Put(id, dec)
	return dec, nil
}
