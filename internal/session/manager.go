package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/storage"
	"go.uber.org/zap"
)

const defaultLoadTimeout = 5 * time.Second

// Manager owns the live sessions. Sessions idle for longer than idleTTL are
// dropped from memory; their persisted state stays in the key-value store and
// is read back on the next request.
type Manager struct {
	kv      storage.KeyValueStore
	idleTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time

	loadTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewManager(kv storage.KeyValueStore, idleTTL time.Duration, logger *zap.Logger) *Manager {
	m := &Manager{
		kv:          kv,
		idleTTL:     idleTTL,
		logger:      logger,
		now:         time.Now,
		loadTimeout: defaultLoadTimeout,
		sessions:    make(map[string]*Session),
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop(cleanupInterval(idleTTL))

	return m
}

// Get returns the session for id, creating it on first use. A store whose
// read fails stays unloaded and is retried on the next Get.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	now := m.now()

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = newSession(id, m.kv, m.logger, now)
		m.sessions[id] = s
	}
	m.mu.Unlock()

	s.touch(now)

	// loads survive request cancellation
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.loadTimeout)
	defer cancel()
	if err := s.load(loadCtx); err != nil {
		m.logger.Warn("session load error", zap.String("session_id", id), zap.Error(err))
	}
	return s
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
	})
	m.wg.Wait()
}

func (m *Manager) cleanupLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.idleSince(now) > m.idleTTL {
			delete(m.sessions, id)
			m.logger.Debug("session evicted", zap.String("session_id", id))
		}
	}
}

func cleanupInterval(idleTTL time.Duration) time.Duration {
	interval := idleTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return interval
}
