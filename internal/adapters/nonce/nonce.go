// Package nonce issues single-use anti-replay tokens bound to one intent.
package nonce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"zdguide/internal/ports"
)

// DefaultTTL is how long an issued token stays valid
const DefaultTTL = 12 * time.Hour

// Manager implements ports.NonceVerifier with HMAC-signed tokens.
// Tokens have the form <random>.<expiry-unix>.<signature>.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu   sync.Mutex
	used map[string]time.Time // token -> expiry, pruned on Issue
}

// Ensure Manager implements NonceVerifier
var _ ports.NonceVerifier = (*Manager)(nil)

// NewManager creates a manager signing with secret. An empty secret gets a
// random per-process one, so tokens do not survive a restart.
func NewManager(secret string, ttl time.Duration) *Manager {
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		used:   make(map[string]time.Time),
	}
}

// Issue returns a fresh token valid only for intent
func (m *Manager) Issue(intent string) (string, error) {
	if intent == "" {
		return "", errors.New("nonce: empty intent")
	}
	m.prune()

	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	expiry := strconv.FormatInt(m.now().Add(m.ttl).Unix(), 10)
	return random + "." + expiry + "." + m.sign(intent, random, expiry), nil
}

// Consume reports whether token is valid for intent and marks it used
func (m *Manager) Consume(intent, token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || intent == "" {
		return false
	}
	random, expiry, sig := parts[0], parts[1], parts[2]

	exp, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil || m.now().Unix() > exp {
		return false
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(intent, random, expiry))) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.used[token]; seen {
		return false
	}
	m.used[token] = time.Unix(exp, 0)
	return true
}

func (m *Manager) sign(intent, random, expiry string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(intent + "|" + random + "|" + expiry))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// prune drops used tokens that have expired anyway
func (m *Manager) prune() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, exp := range m.used {
		if now.After(exp) {
			delete(m.used, token)
		}
	}
}
