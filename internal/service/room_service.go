package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"

	"github.com/samber/lo"
)

type RoomService struct {
	store docstore.Store
	now   func() time.Time
}

func NewRoomService(store docstore.Store) *RoomService {
	return &RoomService{store: store, now: time.Now}
}

// SetClock подменяет источник времени в тестах
func (s *RoomService) SetClock(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// RoomUpdate — частичное обновление; nil-поля не трогаются
type RoomUpdate struct {
	Name            *string
	Description     *string
	IsPublic        *bool
	MaxParticipants *int
}

// CreateRoom создаёт комнату от имени actor; по умолчанию публичная, без участников
func (s *RoomService) CreateRoom(ctx context.Context, actor *domain.User, name string, opts ...domain.RoomOption) (*domain.Room, error) {
	if actor == nil {
		return nil, domain.ErrAuthRequired
	}

	room := domain.NewRoom(name, actor.ID, opts...)
	doc, err := docstore.Encode(room)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")
	delete(doc, "createdAt")

	id, err := s.store.Add(ctx, docstore.CollectionRooms, doc)
	if err != nil {
		return nil, fmt.Errorf("rooms.create: %w", err)
	}

	return s.GetRoom(ctx, id)
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	doc, err := s.store.GetOne(ctx, docstore.CollectionRooms, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var room domain.Room
	if err := docstore.Decode(doc, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RoomService) ListRooms(ctx context.Context, publicOnly bool) ([]domain.Room, error) {
	var (
		docs []docstore.Doc
		err  error
	)
	if publicOnly {
		docs, err = s.store.Query(ctx, docstore.CollectionRooms, "isPublic", true)
	} else {
		docs, err = s.store.GetAll(ctx, docstore.CollectionRooms)
	}
	if err != nil {
		return nil, err
	}

	return decodeRooms(docs)
}

// UpdateRoom — только создатель или админ; проверка по свежему чтению
func (s *RoomService) UpdateRoom(ctx context.Context, actor *domain.User, id string, upd RoomUpdate) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}

	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if !room.CanModify(actor) {
		return domain.ErrForbidden
	}

	patch := docstore.Doc{}
	if upd.Name != nil {
		patch["name"] = *upd.Name
	}
	if upd.Description != nil {
		patch["description"] = *upd.Description
	}
	if upd.IsPublic != nil {
		patch["isPublic"] = *upd.IsPublic
	}
	if upd.MaxParticipants != nil {
		patch["maxParticipants"] = *upd.MaxParticipants
	}
	if len(patch) == 0 {
		return nil
	}

	return s.store.Patch(ctx, docstore.CollectionRooms, id, patch)
}

func (s *RoomService) DeleteRoom(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}

	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if !room.CanModify(actor) {
		return domain.ErrForbidden
	}

	return s.store.Remove(ctx, docstore.CollectionRooms, id)
}

// JoinRoom — атомарно через Mutate; повторный join той же комнаты — no-op
func (s *RoomService) JoinRoom(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}

	err := s.store.Mutate(ctx, docstore.CollectionRooms, id, func(doc docstore.Doc) (docstore.Doc, error) {
		var room domain.Room
		if err := docstore.Decode(doc, &room); err != nil {
			return nil, err
		}
		if room.HasParticipant(actor.ID) {
			return nil, docstore.ErrNoChange
		}
		if room.IsFull() {
			return nil, domain.ErrRoomFull
		}

		room.Participants = append(room.Participants, domain.Participant{
			UserID:      actor.ID,
			DisplayName: actor.DisplayName,
			JoinedAt:    s.now(),
		})
		return docstore.Encode(room)
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (s *RoomService) LeaveRoom(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}

	err := s.store.Mutate(ctx, docstore.CollectionRooms, id, func(doc docstore.Doc) (docstore.Doc, error) {
		var room domain.Room
		if err := docstore.Decode(doc, &room); err != nil {
			return nil, err
		}
		rest := lo.Filter(room.Participants, func(p domain.Participant, _ int) bool {
			return p.UserID != actor.ID
		})
		if len(rest) == len(room.Participants) {
			return nil, docstore.ErrNoChange
		}

		room.Participants = rest
		return docstore.Encode(room)
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// WatchRooms — снапшот сразу, затем на каждое изменение
func (s *RoomService) WatchRooms(ctx context.Context, publicOnly bool, fn func([]domain.Room)) (docstore.Unsubscribe, error) {
	var filter *docstore.Filter
	if publicOnly {
		filter = &docstore.Filter{Field: "isPublic", Value: true}
	}

	return s.store.WatchCollection(ctx, docstore.CollectionRooms, filter, func(docs []docstore.Doc) {
		rooms, err := decodeRooms(docs)
		if err != nil {
			return
		}
		fn(rooms)
	})
}

func decodeRooms(docs []docstore.Doc) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(docs))
	for _, d := range docs {
		var room domain.Room
		if err := docstore.Decode(d, &room); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, nil
}
