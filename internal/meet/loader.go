package meet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cptblues/team-visio/internal/domain"

	"golang.org/x/sync/singleflight"
)

type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateActive
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	default:
		return "unloaded"
	}
}

type LoaderConfig struct {
	Domain  string
	BaseURL string // для тестов; по умолчанию https://{Domain}
	Timeout time.Duration
}

// ScriptLoader тянет external_api.js один раз; параллельные вызовы
// ждут общую загрузку, а не инжектят скрипт повторно.
type ScriptLoader struct {
	client  *http.Client
	baseURL string
	state   atomic.Int32
	group   singleflight.Group
}

func NewScriptLoader(cfg LoaderConfig) *ScriptLoader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://" + cfg.Domain
	}

	return &ScriptLoader{
		client:  &http.Client{Timeout: timeout},
		baseURL: base,
	}
}

func (l *ScriptLoader) State() State {
	return State(l.state.Load())
}

// EnsureLoaded: Unloaded→Loading→Ready; no-op, если уже Ready
func (l *ScriptLoader) EnsureLoaded(ctx context.Context) error {
	if l.State() == StateReady {
		return nil
	}

	// загрузка общая на всех ждущих: отмена первого вызова не должна
	// валить остальных, таймаут ограничен клиентом
	dctx := context.WithoutCancel(ctx)

	_, err, _ := l.group.Do("script", func() (any, error) {
		if l.State() == StateReady {
			return nil, nil
		}
		l.state.Store(int32(StateLoading))

		if err := l.fetch(dctx); err != nil {
			l.state.Store(int32(StateUnloaded))
			return nil, err
		}

		l.state.Store(int32(StateReady))
		return nil, nil
	})
	return err
}

func (l *ScriptLoader) fetch(ctx context.Context) error {
	url := l.baseURL + "/external_api.js"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", domain.ErrLoadFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
	}
	// скрипт загрузился, но конструктор не объявлен — тоже LoadError
	if !bytes.Contains(body, []byte(ConstructorName)) {
		return fmt.Errorf("%w: %s is not defined", domain.ErrLoadFailed, ConstructorName)
	}

	return nil
}
