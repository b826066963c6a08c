package services

import (
	"context"
	"errors"
	"testing"

	"opinions/internal/models"
)

func TestCommentNotifications(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ctx := context.Background()
	op := f.opinion(t, alice, "Tech", false)

	f.comment(t, alice, op.ID, "", false) // self, skipped
	root := f.comment(t, bob, op.ID, "", false)
	f.comment(t, alice, op.ID, root.ID, true)

	forAlice, err := f.notifications.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(forAlice) != 1 || forAlice[0].Type != models.NotificationTypeCommentOpinion {
		t.Fatalf("expected one comment notification for alice, got %+v", forAlice)
	}
	if forAlice[0].Actor == nil || forAlice[0].Actor.ID != bob.ID || forAlice[0].OpinionTitle != op.Title {
		t.Errorf("unexpected notification %+v", forAlice[0])
	}

	forBob, _ := f.notifications.List(ctx, bob.ID)
	if len(forBob) != 1 || forBob[0].Type != models.NotificationTypeReplyComment {
		t.Fatalf("expected one reply notification for bob, got %+v", forBob)
	}
	if forBob[0].Actor != nil {
		t.Errorf("expected anonymous actor hidden, got %+v", forBob[0].Actor)
	}
}

func TestNotificationReadAndDelete(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	ctx := context.Background()
	op := f.opinion(t, alice, "Tech", false)
	f.comment(t, bob, op.ID, "", false)
	f.comment(t, bob, op.ID, "", false)

	if n, _ := f.notifications.UnreadCount(ctx, alice.ID); n != 2 {
		t.Fatalf("expected 2 unread, got %d", n)
	}

	list, _ := f.notifications.List(ctx, alice.ID)
	if err := f.notifications.MarkRead(ctx, list[0].ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected other user's notification hidden, got %v", err)
	}
	if err := f.notifications.MarkRead(ctx, list[0].ID, alice.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n, _ := f.notifications.UnreadCount(ctx, alice.ID); n != 1 {
		t.Errorf("expected 1 unread, got %d", n)
	}

	if err := f.notifications.MarkAllRead(ctx, alice.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n, _ := f.notifications.UnreadCount(ctx, alice.ID); n != 0 {
		t.Errorf("expected 0 unread, got %d", n)
	}

	if err := f.notifications.Delete(ctx, list[1].ID, alice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rest, _ := f.notifications.List(ctx, alice.ID); len(rest) != 1 {
		t.Errorf("expected 1 notification left, got %d", len(rest))
	}
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.opinion(t, alice, "Tech", false)
	f.opinion(t, alice, "Tech", true)

	p, err := f.users.Profile(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Username != "alice" || p.OpinionsCount != 1 {
		t.Errorf("unexpected profile %+v", p)
	}
	if _, err := f.users.Profile(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
