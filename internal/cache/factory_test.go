// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "testing"

func TestFactoryMemoryDefault(t *testing.T) {
	for _, typ := range []string{"", "memory"} {
		c, err := New(Config{Type: typ})
		if err != nil {
			t.Fatalf("New(%q): %v", typ, err)
		}
		if _, ok := c.(*Memory); !ok {
			t.Errorf("New(%q) = %T, want *Memory", typ, c)
		}
		_ = c.Close()
	}
}

func TestFactoryUnknownType(t *testing.T) {
	if _, err := New(Config{Type: "memcached"}); err == nil {
		t.Error("expected error for unknown cache type")
	}
}
