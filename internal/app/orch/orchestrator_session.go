package orch

import (
	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join puts the connection sid into session code under name. A connection
// already in a session leaves it first. Invalid input changes nothing.
func (o *Orchestrator) Join(sid core.SessionID, code domain.SessionCode, name string) (domain.UserID, error) {
	if err := code.Validate(); err != nil {
		return "", err
	}
	session, ok := o.Registry.GetSession(sid)
	if !ok {
		return "", ErrNotConnected
	}
	user := session.Meta().User
	if err := domain.ValidateUsername(name); err != nil {
		return "", err
	}

	if from, _, ok := o.Registry.SessionOf(sid); ok {
		o.Leave(sid)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_session", string(from)).Msg("left previous session")
	}
	_ = user.SetUsername(name)

	o.send(session, core.JoinedSessionMessage{
		Type:          core.TypeJoinedSession,
		SessionCode:   code,
		ParticipantID: user.ID,
	})
	o.Registry.UpdateSession(sid, code)
	count := o.Sessions.Add(code, session)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("session", string(code)).Int("count", count).Msg("joined")

	if count >= 2 {
		o.Sessions.TriggerShuffleCycle(code)
	}
	return user.ID, nil
}

// Leave removes sid from its session, if any. The remaining participants
// get a fresh shuffle so the departed participant's partner is re-paired.
func (o *Orchestrator) Leave(sid core.SessionID) {
	code, session, ok := o.Registry.SessionOf(sid)
	if !ok {
		return
	}
	remaining, _ := o.Sessions.Remove(code, session.Meta().User.ID)
	o.Registry.RemoveSession(sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("session", string(code)).Int("remaining", remaining).Msg("left")

	if remaining > 1 {
		o.Sessions.TriggerShuffleCycle(code)
	}
}

// OnDisconnect is the single terminal event of a connection.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Leave(sid)
	o.Registry.Unbind(sid)
}
