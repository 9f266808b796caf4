package auth

import (
	"sync"
	"time"
)

type sessionEntry struct {
	UserID   string
	IssuedAt time.Time
}

// SessionRegistry records issued credentials in memory. It is best-effort
// bookkeeping only: entries are written at login, never pruned, and never
// consulted when validating a request; the token's own signature and
// expiry are authoritative. The registry exists so operators can inspect
// which sessions a process has handed out. Thread-safe.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]sessionEntry)}
}

// Record stores the credential issued for a user.
func (r *SessionRegistry) Record(token, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = sessionEntry{UserID: userID, IssuedAt: time.Now()}
}

// Lookup returns the user a credential was issued for, if this process
// issued it. A miss does not mean the credential is invalid.
func (r *SessionRegistry) Lookup(token string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[token]
	return entry.UserID, ok
}

// Count returns the number of credentials issued by this process.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
