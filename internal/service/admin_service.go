package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"
)

type AdminService struct {
	store      docstore.Store
	production bool
}

func NewAdminService(store docstore.Store, production bool) *AdminService {
	return &AdminService{store: store, production: production}
}

// SetAdminStatus меняет флаг админа; право actor-а перечитывается из хранилища
func (s *AdminService) SetAdminStatus(ctx context.Context, actor *domain.User, userID string, isAdmin bool) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}

	actorDoc, err := s.store.GetOne(ctx, docstore.CollectionUsers, actor.ID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if admin, _ := actorDoc["isAdmin"].(bool); !admin {
		return domain.ErrForbidden
	}

	err = s.store.Patch(ctx, docstore.CollectionUsers, userID, docstore.Doc{"isAdmin": isAdmin})
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	slog.Info("admin status updated", "user_id", userID, "is_admin", isAdmin, "by", actor.ID)
	return nil
}

// MakeSelfAdmin — отладочный ход без проверки прав; в prod закрыт
func (s *AdminService) MakeSelfAdmin(ctx context.Context, actor *domain.User) error {
	if actor == nil {
		return domain.ErrAuthRequired
	}
	if s.production {
		return domain.ErrForbidden
	}

	if err := s.store.Put(ctx, docstore.CollectionUsers, actor.ID, docstore.Doc{
		"email":       actor.Email,
		"displayName": actor.DisplayName,
		"isAdmin":     true,
	}); err != nil {
		return err
	}

	slog.Warn("self-admin used", "user_id", actor.ID)
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	docs, err := s.store.GetAll(ctx, docstore.CollectionUsers)
	if err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		var u domain.User
		if err := docstore.Decode(d, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
