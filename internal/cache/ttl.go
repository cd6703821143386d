package cache

import (
	"strings"
	"sync"
	"time"
)

// TTL is an in-memory cache of serialized responses. Usado para o relatório de
// fechamento e a lista de médicos, que mudam pouco dentro de um mesmo mês.
type TTL struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

type entry struct {
	data    []byte
	expires time.Time
}

func New(ttl time.Duration) *TTL {
	c := &TTL{entries: make(map[string]entry), ttl: ttl}
	go c.sweep()
	return c
}

func (c *TTL) sweep() {
	tick := time.NewTicker(c.ttl)
	defer tick.Stop()
	for range tick.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.entries {
			if e.expires.Before(now) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
}

// Get returns the cached bytes for key, or nil when absent or expired.
func (c *TTL) Get(key string) []byte {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expires.Before(time.Now()) {
		return nil
	}
	return e.data
}

func (c *TTL) Set(key string, data []byte) {
	e := entry{data: data, expires: time.Now().Add(c.ttl)}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate removes every key with the given prefix. Gravações que afetam o
// fechamento chamam isso com o prefixo da clínica.
func (c *TTL) Invalidate(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
