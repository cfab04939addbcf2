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

import (
	"container/list"
	"fmt"
	"sync"
)

// LRUCache is a Least Recently Used (LRU) Cache with given capacity.
// Once full, every insert of a new key evicts the entry that has gone
// unread the longest.
type LRUCache struct {
	lock     sync.Mutex
	capacity int
	elements map[interface{}]*list.Element
	order    *list.List
}

type lruEntry struct {
	key   interface{}
	value interface{}
}

// NewLRUCache creates a new Least Recently Used (LRU) Cache.
// capacity must be a positive integer.
func NewLRUCache(capacity int) (*LRUCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be a positive integer")
	}
	return &LRUCache{
		capacity: capacity,
		elements: make(map[interface{}]*list.Element),
		order:    list.New(),
	}, nil
}

// Get returns the value associated with key and a bool that is false if
// the key was not found. A hit marks the entry as most recently used.
func (c *LRUCache) Get(key interface{}) (interface{}, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	element, ok := c.elements[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*lruEntry).value, true
}

// Put puts a value in cache associated with key, evicting the least
// recently used entry when the cache is at capacity
func (c *LRUCache) Put(key interface{}, value interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if element, ok := c.elements[key]; ok {
		element.Value.(*lruEntry).value = value
		c.order.MoveToFront(element)
		return
	}
	if c.order.Len() == c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.elements, oldest.Value.(*lruEntry).key)
		}
	}
	c.elements[key] = c.order.PushFront(&lruEntry{key: key, value: value})
}

// Delete deletes the cache entry associated with key
func (c *LRUCache) Delete(key interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if element, ok := c.elements[key]; ok {
		c.order.Remove(element)
		delete(c.elements, key)
	}
}

// Len returns the number of entries currently held
func (c *LRUCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.order.Len()
}
