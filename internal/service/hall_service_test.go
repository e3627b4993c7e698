package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"
)

func TestHallService_CreateHall(t *testing.T) {
	ctx := context.Background()
	svc := NewHallService(docstore.NewMemory())

	if _, err := svc.CreateHall(ctx, nil); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("anonymous create: expected ErrAuthRequired, got %v", err)
	}

	hall, err := svc.CreateHall(ctx, alice, domain.WithHallDescription("Alice's hall"))
	if err != nil {
		t.Fatalf("CreateHall: %v", err)
	}
	if hall.ID == "" {
		t.Fatal("hall id not assigned")
	}
	if hall.CreatorID != alice.ID {
		t.Fatalf("creatorId mismatch: %q", hall.CreatorID)
	}
	if hall.RoomLimit != domain.DefaultHallRoomLimit {
		t.Fatalf("expected default room limit %d, got %d", domain.DefaultHallRoomLimit, hall.RoomLimit)
	}

	// второй холл тому же пользователю не положен
	if _, err := svc.CreateHall(ctx, alice); !errors.Is(err, domain.ErrHallExists) {
		t.Fatalf("second hall: expected ErrHallExists, got %v", err)
	}
}

func TestHallService_GetUserHall(t *testing.T) {
	ctx := context.Background()
	svc := NewHallService(docstore.NewMemory())

	created, err := svc.CreateHall(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}

	hall, err := svc.GetUserHall(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUserHall: %v", err)
	}
	if hall == nil || hall.ID != created.ID {
		t.Fatalf("expected alice's hall, got %v", hall)
	}

	// нет холла — nil без ошибки
	hall, err = svc.GetUserHall(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetUserHall for stranger: %v", err)
	}
	if hall != nil {
		t.Fatalf("expected nil, got %v", hall)
	}

	has, err := svc.CheckUserHall(ctx, alice.ID)
	if err != nil || !has {
		t.Fatalf("CheckUserHall(alice) = %v, %v", has, err)
	}
	has, err = svc.CheckUserHall(ctx, "nobody")
	if err != nil || has {
		t.Fatalf("CheckUserHall(nobody) = %v, %v", has, err)
	}
}

func TestHallService_UpdateAuthorization(t *testing.T) {
	ctx := context.Background()
	svc := NewHallService(docstore.NewMemory())

	hall, _ := svc.CreateHall(ctx, alice)

	limit := 5
	if err := svc.UpdateHall(ctx, bob, hall.ID, HallUpdate{RoomLimit: &limit}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("outsider update: expected ErrForbidden, got %v", err)
	}

	if err := svc.UpdateHall(ctx, alice, hall.ID, HallUpdate{RoomLimit: &limit}); err != nil {
		t.Fatalf("creator update: %v", err)
	}
	got, _ := svc.GetHall(ctx, hall.ID)
	if got.RoomLimit != 5 {
		t.Fatalf("roomLimit not updated: %d", got.RoomLimit)
	}

	invited := []string{"bob", "carol"}
	if err := svc.UpdateHall(ctx, root, hall.ID, HallUpdate{InvitedUsers: &invited}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	got, _ = svc.GetHall(ctx, hall.ID)
	if len(got.InvitedUsers) != 2 {
		t.Fatalf("invitedUsers not updated: %v", got.InvitedUsers)
	}
}

func TestHallService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := NewHallService(docstore.NewMemory())

	hall, _ := svc.CreateHall(ctx, alice)

	if err := svc.DeleteHall(ctx, bob, hall.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("outsider delete: expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteHall(ctx, alice, hall.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}

	// после удаления можно создать заново
	if _, err := svc.CreateHall(ctx, alice); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}

func TestHallService_WatchHalls(t *testing.T) {
	ctx := context.Background()
	svc := NewHallService(docstore.NewMemory())

	var calls int
	var last []domain.Hall
	unsub, err := svc.WatchHalls(ctx, func(halls []domain.Hall) {
		calls++
		last = halls
	})
	if err != nil {
		t.Fatal(err)
	}
	defer unsub()

	if calls != 1 || len(last) != 0 {
		t.Fatalf("expected immediate empty snapshot, calls=%d last=%v", calls, last)
	}

	if _, err := svc.CreateHall(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if len(last) != 1 {
		t.Fatalf("watch missed hall creation: %v", last)
	}
}
