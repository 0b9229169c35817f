package orch

import (
	"errors"

	"github.com/dkeye/Shuffle/internal/app"
	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrNotConnected = errors.New("connection not registered")

// Orchestrator keeps the connection registry and the session table
// consistent and is the only writer of both.
type Orchestrator struct {
	Registry *app.Registry
	Sessions *app.SessionManager
}

// Whoami reports the participant behind sid and its session, if any.
func (o *Orchestrator) Whoami(sid core.SessionID) (*domain.User, domain.SessionCode, bool) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, "", false
	}
	code, _, _ := o.Registry.SessionOf(sid)
	return sess.Meta().User, code, true
}

// PartnerOf reports whom sid is currently told to call.
func (o *Orchestrator) PartnerOf(sid core.SessionID) (domain.UserID, bool) {
	code, session, ok := o.Registry.SessionOf(sid)
	if !ok {
		return "", false
	}
	return o.Sessions.Partner(code, session.Meta().User.ID)
}

func (o *Orchestrator) send(ms core.MemberSession, v any) {
	frame, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return
	}
	if err := ms.Signal().TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("participant", string(ms.Meta().User.ID)).Msg("send skipped")
	}
}
