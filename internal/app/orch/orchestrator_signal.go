package orch

import (
	"encoding/json"

	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Relay forwards an opaque signaling payload from sid to participant to in
// the same session. Absent or closed recipients are dropped silently.
func (o *Orchestrator) Relay(sid core.SessionID, to domain.UserID, signal json.RawMessage) bool {
	code, session, ok := o.Registry.SessionOf(sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("relay: sender not in a session")
		return false
	}
	frame, err := core.Encode(core.SignalMessage{
		Type:   core.TypeWebRTCSignal,
		From:   session.Meta().User.ID,
		Signal: signal,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("relay encode")
		return false
	}
	delivered := o.Sessions.Deliver(code, to, frame)
	if !delivered {
		log.Debug().Str("module", "orch").Str("session", string(code)).Str("to", string(to)).Msg("relay dropped")
	}
	return delivered
}
