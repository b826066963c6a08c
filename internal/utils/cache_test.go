package utils

import (
	"testing"
	"time"
)

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache[[]string](10)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("topics", []string{"go"}, time.Minute)
	if got, ok := c.Get("topics"); !ok || len(got) != 1 {
		t.Fatalf("expected cached value, got %v %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("topics"); ok {
		t.Error("expected entry to expire")
	}
}

func TestCacheDelete(t *testing.T) {
	c, _ := NewCache[int](10)
	c.Set("k", 1, time.Hour)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry deleted")
	}
}
