package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"variations-service/internal/variations"
)

var (
	// ErrSessionExists means an edit session is already open for the product.
	ErrSessionExists = errors.New("an edit session is already open for this product")
	// ErrNoSession means no edit session is open for the product.
	ErrNoSession = errors.New("no edit session is open for this product")
)

// DefaultSessionTTL bounds how long an abandoned session holds its lock.
const DefaultSessionTTL = 30 * time.Minute

// Handle wraps an engine session with a mutex. The engine itself is
// single-threaded by contract; the handle serializes HTTP requests onto it.
type Handle struct {
	mu      sync.Mutex
	session *variations.Session
}

// Do runs fn with exclusive access to the session.
func (h *Handle) Do(fn func(s *variations.Session) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.session)
}

// Manager owns the live edit sessions, one per (tenant, product). A redis
// lock extends the one-session guarantee across replicas; without redis the
// in-memory registry still enforces it within one process.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Handle
	redis    *redis.Client
	logger   *logrus.Entry
	ttl      time.Duration
}

func NewManager(redisClient *redis.Client, logger *logrus.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		sessions: make(map[string]*Handle),
		redis:    redisClient,
		logger:   logger.WithField("component", "session-manager"),
		ttl:      ttl,
	}
}

func sessionKey(tenantID string, productID uuid.UUID) string {
	return tenantID + ":" + productID.String()
}

func (m *Manager) lockKey(tenantID string, productID uuid.UUID) string {
	return fmt.Sprintf("tesseract:variations:session-lock:%s:%s", tenantID, productID.String())
}

// Open creates and registers a new edit session for a product. Fails with
// ErrSessionExists if one is already open anywhere.
func (m *Manager) Open(ctx context.Context, tenantID string, productID uuid.UUID, catalog variations.Catalog) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionKey(tenantID, productID)
	if _, ok := m.sessions[key]; ok {
		return nil, ErrSessionExists
	}

	if m.redis != nil {
		acquired, err := m.redis.SetNX(ctx, m.lockKey(tenantID, productID), "1", m.ttl).Result()
		if err != nil {
			m.logger.WithError(err).Warn("Session lock unavailable, falling back to in-process registry")
		} else if !acquired {
			return nil, ErrSessionExists
		}
	}

	handle := &Handle{session: variations.NewSession(tenantID, productID, catalog)}
	m.sessions[key] = handle

	m.logger.WithFields(logrus.Fields{
		"tenantID":  tenantID,
		"productID": productID.String(),
	}).Info("Edit session opened")

	return handle, nil
}

// Get returns the open session for a product and extends its lock.
func (m *Manager) Get(ctx context.Context, tenantID string, productID uuid.UUID) (*Handle, error) {
	m.mu.Lock()
	handle, ok := m.sessions[sessionKey(tenantID, productID)]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}

	if m.redis != nil {
		m.redis.Expire(ctx, m.lockKey(tenantID, productID), m.ttl)
	}
	return handle, nil
}

// Close discards the session and releases its lock. Closing an already
// closed session is a no-op.
func (m *Manager) Close(ctx context.Context, tenantID string, productID uuid.UUID) {
	m.mu.Lock()
	_, ok := m.sessions[sessionKey(tenantID, productID)]
	delete(m.sessions, sessionKey(tenantID, productID))
	m.mu.Unlock()

	if m.redis != nil {
		m.redis.Del(ctx, m.lockKey(tenantID, productID))
	}

	if ok {
		m.logger.WithFields(logrus.Fields{
			"tenantID":  tenantID,
			"productID": productID.String(),
		}).Info("Edit session closed")
	}
}
