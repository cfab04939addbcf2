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

package cache

import "sync"

// MapCache is an unbounded cache backed by a map
type MapCache struct {
	lock    sync.RWMutex
	entries map[interface{}]interface{}
}

// NewMapCache creates a new cache backed by a map
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[interface{}]interface{})}
}

// Get returns the value associated with key and a bool that is false if
// the key was not found
func (c *MapCache) Get(key interface{}) (interface{}, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// Put puts a value in cache associated with key
func (c *MapCache) Put(key interface{}, value interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries[key] = value
}

// Delete deletes the cache entry associated with key
func (c *MapCache) Delete(key interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries currently held
func (c *MapCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}
