package app

import (
	"context"
	"sync"

	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Code    domain.SessionCode
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry is the connection side of membership: it maps every live
// connection to its member session and, once joined, its session code.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind forgets sid and cancels the context of its connection pumps.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok && e.Cancel != nil {
		e.Cancel()
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// SessionOf reports the session code the connection has joined.
func (r *Registry) SessionOf(sid core.SessionID) (domain.SessionCode, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.Code == "" {
		return "", nil, false
	}
	return entry.Code, entry.Session, true
}

func (r *Registry) UpdateSession(sid core.SessionID, code domain.SessionCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.Code = code
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("session", string(code)).Msg("updated session")
	return true
}

func (r *Registry) RemoveSession(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[sid]; ok {
		entry.Code = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed session association")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
