package services

import (
	"context"
	"errors"
	"testing"
)

func TestCreateTopic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	topic, err := f.topics.Create(ctx, "  Books ", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if topic.Name != "Books" || topic.Description != "Opinions about Books" {
		t.Errorf("unexpected topic %+v", topic)
	}

	if _, err := f.topics.Create(ctx, "BOOKS", "again"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected duplicate to fail, got %v", err)
	}
	if _, err := f.topics.Create(ctx, " ", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected empty name to fail, got %v", err)
	}
}

func TestTopicListCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if list, _ := f.topics.List(ctx); len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	if _, err := f.topics.Create(ctx, "Zeta", "z"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.topics.Create(ctx, "Alpha", "a"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, _ := f.topics.List(ctx)
	if len(list) != 2 || list[0].Name != "Alpha" {
		t.Errorf("expected fresh sorted list, got %+v", list)
	}
}

func TestSeedTopics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.topics.Seed(ctx)
	if err != nil || n != len(DefaultTopics) {
		t.Fatalf("expected %d seeded, got %d (%v)", len(DefaultTopics), n, err)
	}
	if n, _ := f.topics.Seed(ctx); n != 0 {
		t.Errorf("expected second seed to be a no-op, got %d", n)
	}
	list, _ := f.topics.List(ctx)
	if len(list) != len(DefaultTopics) {
		t.Errorf("expected %d topics, got %d", len(DefaultTopics), len(list))
	}
}
