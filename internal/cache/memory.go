package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Memory struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 128
	}
	return &Memory{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) Get(key string) ([]byte, bool) { return m.lru.Get(key) }

func (m *Memory) Set(key string, val []byte) { m.lru.Add(key, val) }

func (m *Memory) Purge() error {
	m.lru.Purge()
	return nil
}

func (m *Memory) Close() error { return nil }
