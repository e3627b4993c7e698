package auth

import (
	"sync"

	"github.com/cptblues/team-visio/internal/domain"
)

// UserStore — реактивное состояние текущего пользователя.
// Init идемпотентен: повторный вызов снимает прежнюю подписку.
type UserStore struct {
	svc *Service

	mu      sync.Mutex
	current *domain.User
	loading bool
	unsub   func()
	nextSub int64
	subs    map[int64]func(*domain.User)
}

func NewUserStore(svc *Service) *UserStore {
	return &UserStore{
		svc:     svc,
		loading: true,
		subs:    make(map[int64]func(*domain.User)),
	}
}

func (s *UserStore) Init() func() {
	s.mu.Lock()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.mu.Unlock()

	unsub := s.svc.OnAuthChange(func(u *domain.User) {
		s.mu.Lock()
		s.current = u
		s.loading = false
		fns := make([]func(*domain.User), 0, len(s.subs))
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
		s.mu.Unlock()

		for _, fn := range fns {
			fn(u)
		}
	})

	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.unsub != nil {
			s.unsub()
			s.unsub = nil
		}
	}
}

func (s *UserStore) Current() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *UserStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *UserStore) IsLoggedIn() bool {
	return s.Current() != nil
}

func (s *UserStore) IsAdmin() bool {
	u := s.Current()
	return u != nil && u.IsAdmin
}

// Subscribe — уведомления о каждой смене пользователя
func (s *UserStore) Subscribe(fn func(*domain.User)) func() {
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

func (s *UserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
