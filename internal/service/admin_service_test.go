package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"
)

func seedUser(t *testing.T, store docstore.Store, id string, isAdmin bool) {
	t.Helper()
	err := store.Put(context.Background(), docstore.CollectionUsers, id, docstore.Doc{
		"email":       id + "@example.com",
		"displayName": id,
		"isAdmin":     isAdmin,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAdminService_SetAdminStatus(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := NewAdminService(store, false)

	seedUser(t, store, "alice", false)
	seedUser(t, store, "root", true)

	// право проверяется по хранилищу, а не по переданной структуре
	impostor := &domain.User{ID: "alice", IsAdmin: true}
	if err := svc.SetAdminStatus(ctx, impostor, "alice", true); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-admin grant: expected ErrForbidden, got %v", err)
	}

	if err := svc.SetAdminStatus(ctx, root, "alice", true); err != nil {
		t.Fatalf("admin grant: %v", err)
	}
	doc, _ := store.GetOne(ctx, docstore.CollectionUsers, "alice")
	if doc["isAdmin"] != true {
		t.Fatalf("flag not set: %v", doc)
	}

	if err := svc.SetAdminStatus(ctx, root, "ghost", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing target: expected ErrNotFound, got %v", err)
	}
}

func TestAdminService_MakeSelfAdmin(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	prod := NewAdminService(store, true)
	if err := prod.MakeSelfAdmin(ctx, alice); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("prod self-admin: expected ErrForbidden, got %v", err)
	}

	dev := NewAdminService(store, false)
	if err := dev.MakeSelfAdmin(ctx, alice); err != nil {
		t.Fatalf("dev self-admin: %v", err)
	}
	doc, err := store.GetOne(ctx, docstore.CollectionUsers, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if doc["isAdmin"] != true {
		t.Fatalf("flag not set: %v", doc)
	}
}

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := NewAdminService(store, false)

	seedUser(t, store, "alice", false)
	seedUser(t, store, "bob", false)

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
