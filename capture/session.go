package capture

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"
)

// Session is the explicit browsing-session context passed into capture
// calls: one Session per logical visitor, living as long as that visitor's
// interaction does. The opaque id is minted lazily on first use and then
// reused for every event, making the Session the unit of unique-visitor
// counting.
type Session struct {
	mu sync.Mutex
	id string
}

func NewSession() *Session {
	return &Session{}
}

// ID returns the session identifier, generating it on first call. The
// format (unix-ms plus random suffix) is opaque to consumers; only
// uniqueness matters.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		s.id = newSessionID()
	}
	return s.id
}

func newSessionID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		log.Printf("ERROR: Failed to generate random bytes for session ID: %v", err)
		return "fallback_session_" + time.Now().Format("20060102150405")
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
