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
	"sync"

	"github.com/avroline/avroline-go/avro"
)

// SchemaStore is an in-memory schema registry assigning small integer
// IDs to schemas. Registration is idempotent per schema fingerprint, so
// serializers on different goroutines sharing a store agree on IDs.
type SchemaStore struct {
	lock sync.RWMutex
	byID map[int]*avro.Schema
	ids  map[[32]byte]int
	next int
}

// NewSchemaStore creates an empty SchemaStore
func NewSchemaStore() *SchemaStore {
	return &SchemaStore{
		byID: make(map[int]*avro.Schema),
		ids:  make(map[[32]byte]int),
		next: 1,
	}
}

// Register returns the ID for the given schema, assigning the next free
// ID if its fingerprint has not been seen before
func (s *SchemaStore) Register(schema *avro.Schema) (int, error) {
	if schema == nil {
		return -1, fmt.Errorf("nil schema")
	}
	fp := schema.Fingerprint()
	s.lock.Lock()
	defer s.lock.Unlock()
	if id, ok := s.ids[fp]; ok {
		return id, nil
	}
	id := s.next
	s.next++
	s.byID[id] = schema
	s.ids[fp] = id
	return id, nil
}

// GetByID returns the schema registered under id
func (s *SchemaStore) GetByID(id int) (*avro.Schema, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	schema, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("no schema registered with id %d", id)
	}
	return schema, nil
}

// IDFor returns the ID a schema was registered under
func (s *SchemaStore) IDFor(schema *avro.Schema) (int, error) {
	if schema == nil {
		return -1, fmt.Errorf("nil schema")
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	id, ok := s.ids[schema.Fingerprint()]
	if !ok {
		return -1, fmt.Errorf("schema %q is not registered", schema.Name())
	}
	return id, nil
}

// Len returns the number of registered schemas
func (s *SchemaStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.byID)
}
