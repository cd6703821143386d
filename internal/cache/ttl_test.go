package cache

import (
	"testing"
	"time"
)

func TestTTLGetSet(t *testing.T) {
	c := New(time.Minute)
	if got := c.Get("x"); got != nil {
		t.Fatalf("Get em cache vazio = %q; esperava nil", got)
	}
	c.Set("x", []byte("valor"))
	if got := string(c.Get("x")); got != "valor" {
		t.Fatalf("Get = %q; esperava valor", got)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("x", []byte("valor"))
	time.Sleep(30 * time.Millisecond)
	if got := c.Get("x"); got != nil {
		t.Fatalf("entrada expirada ainda retornada: %q", got)
	}
}

func TestTTLInvalidatePrefix(t *testing.T) {
	c := New(time.Minute)
	c.Set("fechamento:c1:3-2025", []byte("a"))
	c.Set("fechamento:c1:4-2025", []byte("b"))
	c.Set("fechamento:c2:3-2025", []byte("c"))
	c.Invalidate("fechamento:c1:")
	if c.Get("fechamento:c1:3-2025") != nil || c.Get("fechamento:c1:4-2025") != nil {
		t.Fatal("prefixo c1 não foi invalidado")
	}
	if c.Get("fechamento:c2:3-2025") == nil {
		t.Fatal("invalidação removeu chave de outra clínica")
	}
}
