package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"
)

type HallService struct {
	store docstore.Store
}

func NewHallService(store docstore.Store) *HallService {
	return &HallService{store: store}
}

type HallUpdate struct {
	Description  *string
	RoomLimit    *int
	InvitedUsers *[]string
}

// CreateHall — один холл на пользователя.
// Проверка не транзакционна, как в исходной системе: гонка двух Create может
// дать второй холл; при малых данных это принятый риск.
func (s *HallService) CreateHall(ctx context.Context, actor *domain.User, opts ...domain.HallOption) (*domain.Hall, error) {
	if actor == nil {
		return nil, domain.ErrAuthRequired
	}

	has, err := s.CheckUserHall(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, domain.ErrHallExists
	}

	hall := domain.NewHall(actor.ID, opts...)
	doc, err := docstore.Encode(hall)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")
	delete(doc, "createdAt")

	id, err := s.store.Add(ctx, docstore.CollectionHalls, doc)
	if err != nil {
		return nil, fmt.Errorf("halls.create: %w", err)
	}

	return s.GetHall(ctx, id)
}

func (s *HallService) GetHall(ctx context.Context, id string) (*domain.Hall, error) {
	doc, err := s.store.GetOne(ctx, docstore.CollectionHalls, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var hall domain.Hall
	if err := docstore.Decode(doc, &hall); err != nil {
		return nil, err
	}
	return &hall, nil
}

// CheckUserHall — есть ли у пользователя холл
func (s *HallService) CheckUserHall(ctx context.Context, userID string) (bool, error) {
	hall, err := s.GetUserHall(ctx, userID)
	if err != nil {
		return false, err
	}
	return hall != nil, nil
}

// GetUserHall ищет по полю creatorId; nil, если холла нет
func (s *HallService) GetUserHall(ctx context.Context, userID string) (*domain.Hall, error) {
	docs, err := s.store.Query(ctx, docstore.CollectionHalls, "creatorId", userID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var hall domain.Hall
	if err := docstore.Decode(docs[0], &hall); err != nil {
		return nil, err
	}
	return &hall, nil
}

func (s *HallService) ListHalls(ctx context.Context) ([]domain.Hall, error) {
	docs, err := s.store.GetAll(ctx, docstore.CollectionHalls)
	if err != nil {
		return nil, err
	}
	return decodeHalls(docs)
}

// UpdateHall — только создатель или админ
func (s *HallService) UpdateHall(ctx context.Context, actor *domain.User, id string, upd HallUpdate) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}

	hall, err := s.GetHall(ctx, id)
	if err != nil {
		return err
	}
	if !hall.CanModify(actor) {
		return domain.ErrForbidden
	}

	patch := docstore.Doc{}
	if upd.Description != nil {
		patch["description"] = *upd.Description
	}
	if upd.RoomLimit != nil && *upd.RoomLimit > 0 {
		patch["roomLimit"] = *upd.RoomLimit
	}
	if upd.InvitedUsers != nil {
		patch["invitedUsers"] = *upd.InvitedUsers
	}
	if len(patch) == 0 {
		return nil
	}

	return s.store.Patch(ctx, docstore.CollectionHalls, id, patch)
}

func (s *HallService) DeleteHall(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}

	hall, err := s.GetHall(ctx, id)
	if err != nil {
		return err
	}
	if !hall.CanModify(actor) {
		return domain.ErrForbidden
	}

	return s.store.Remove(ctx, docstore.CollectionHalls, id)
}

func (s *HallService) WatchHalls(ctx context.Context, fn func([]domain.Hall)) (docstore.Unsubscribe, error) {
	return s.store.WatchCollection(ctx, docstore.CollectionHalls, nil, func(docs []docstore.Doc) {
		halls, err := decodeHalls(docs)
		if err != nil {
			return
		}
		fn(halls)
	})
}

func decodeHalls(docs []docstore.Doc) ([]domain.Hall, error) {
	out := make([]domain.Hall, 0, len(docs))
	for _, d := range docs {
		var hall domain.Hall
		if err := docstore.Decode(d, &hall); err != nil {
			return nil, err
		}
		out = append(out, hall)
	}
	return out, nil
}
