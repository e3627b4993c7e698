package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/domain"
	"github.com/cptblues/team-visio/internal/security"
)

type Session struct {
	User         *domain.User
	AccessToken  string
	SessionToken string
	ExpiresIn    int64
}

type sessionRecord struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type identityRecord struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// Service объединяет учетные данные, профили и сессии поверх docstore.
// Подписчики OnAuthChange получают объединённый профиль или nil.
type Service struct {
	store      docstore.Store
	jwt        *security.JWTSigner
	passPolicy security.BcryptConfig
	sessionTTL time.Duration
	now        func() time.Time

	mu      sync.Mutex
	nextSub int64
	subs    map[int64]func(*domain.User)
}

func NewService(store docstore.Store, jwt *security.JWTSigner, passPolicy security.BcryptConfig, sessionTTL time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:      store,
		jwt:        jwt,
		passPolicy: passPolicy,
		sessionTTL: sessionTTL,
		now:        now,
		subs:       make(map[int64]func(*domain.User)),
	}
}

// Register создает учетную запись, связанный профиль и открывает сессию
func (s *Service) Register(ctx context.Context, email, password, displayName string, isAdmin bool) (*Session, error) {
	email = domain.NormalizeEmail(email)

	existing, err := s.store.Query(ctx, docstore.CollectionIdentities, "email", email)
	if err != nil {
		slog.Error("auth.register.queryIdentity failed", slog.Any("err", err))
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password, &s.passPolicy)
	if err != nil {
		slog.Error("auth.register.hashPassword failed", slog.Any("err", err))
		return nil, err
	}

	u, err := domain.NewUser(email, displayName, s.now(), domain.WithAdmin(isAdmin))
	if err != nil {
		return nil, err
	}

	profile, err := docstore.Encode(u)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Add(ctx, docstore.CollectionUsers, profile)
	if err != nil {
		slog.Error("auth.register.createProfile failed", slog.Any("err", err))
		return nil, err
	}
	u.ID = id

	ident, err := docstore.Encode(identityRecord{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionIdentities, id, ident); err != nil {
		slog.Error("auth.register.createIdentity failed", slog.Any("err", err))
		return nil, err
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}

	s.fireAuthChange(u)
	return sess, nil
}

// Login аутентифицирует по email+пароль; профиль подмешивается к учетке
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = domain.NormalizeEmail(email)

	idents, err := s.store.Query(ctx, docstore.CollectionIdentities, "email", email)
	if err != nil {
		slog.Error("auth.login.queryIdentity failed", slog.Any("err", err))
		return nil, err
	}
	if len(idents) == 0 {
		return nil, ErrInvalidCredentials
	}

	var ident identityRecord
	if err := docstore.Decode(idents[0], &ident); err != nil {
		return nil, err
	}
	if err := security.ComparePassword(ident.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, _ := idents[0]["id"].(string)
	u, err := s.mergedProfile(ctx, userID, ident.Email)
	if err != nil {
		return nil, err
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}

	s.fireAuthChange(u)
	return sess, nil
}

// Logout инвалидирует сессию; отсутствующий токен — no-op
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	hash := security.SHA256HexOfString(sessionToken)
	if err := s.store.Remove(ctx, docstore.CollectionSessions, hash); err != nil {
		slog.Error("auth.logout.removeSession failed", slog.Any("err", err))
		return err
	}

	s.fireAuthChange(nil)
	return nil
}

// Resolve возвращает пользователя по access-JWT или opaque session-токену
func (s *Service) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrAuthRequired
	}

	if claims, err := s.jwt.ParseAndValidate(token); err == nil {
		return s.mergedProfile(ctx, claims.Subject, "")
	}

	hash := security.SHA256HexOfString(token)
	doc, err := s.store.GetOne(ctx, docstore.CollectionSessions, hash)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, domain.ErrAuthRequired
		}
		return nil, err
	}

	var rec sessionRecord
	if err := docstore.Decode(doc, &rec); err != nil {
		return nil, err
	}
	if s.now().After(rec.ExpiresAt) {
		_ = s.store.Remove(ctx, docstore.CollectionSessions, hash)
		return nil, ErrSessionExpired
	}

	return s.mergedProfile(ctx, rec.UserID, "")
}

// OnAuthChange подписывает на смену сессии; возвращает отписку
func (s *Service) OnAuthChange(fn func(*domain.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// IsUserAdmin перечитывает профиль из хранилища, а не кеш
func (s *Service) IsUserAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	doc, err := s.store.GetOne(ctx, docstore.CollectionUsers, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	isAdmin, _ := doc["isAdmin"].(bool)
	return isAdmin, nil
}

func (s *Service) openSession(ctx context.Context, u *domain.User) (*Session, error) {
	now := s.now()

	access, err := s.jwt.SignAccessToken(u.ID, now)
	if err != nil {
		slog.Error("auth.openSession.signAccess failed", slog.Any("err", err))
		return nil, err
	}

	opaque, err := security.RandomStringURLSafe(32)
	if err != nil {
		return nil, err
	}
	hash := security.SHA256HexOfString(opaque)

	rec, err := docstore.Encode(sessionRecord{
		UserID:    u.ID,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, docstore.CollectionSessions, hash, rec); err != nil {
		slog.Error("auth.openSession.saveSession failed", slog.Any("err", err))
		return nil, err
	}

	return &Session{
		User:         u,
		AccessToken:  access,
		SessionToken: opaque,
		ExpiresIn:    int64(s.jwt.TTL().Seconds()),
	}, nil
}

// mergedProfile: учетка + документ профиля; isAdmin по умолчанию false
func (s *Service) mergedProfile(ctx context.Context, userID, email string) (*domain.User, error) {
	doc, err := s.store.GetOne(ctx, docstore.CollectionUsers, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			if email == "" {
				return nil, domain.ErrNotFound
			}
			return &domain.User{ID: userID, Email: email}, nil
		}
		return nil, err
	}

	var u domain.User
	if err := docstore.Decode(doc, &u); err != nil {
		return nil, err
	}
	u.ID = userID
	if u.Email == "" {
		u.Email = email
	}
	return &u, nil
}

func (s *Service) fireAuthChange(u *domain.User) {
	s.mu.Lock()
	fns := make([]func(*domain.User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
