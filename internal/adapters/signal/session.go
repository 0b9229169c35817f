package signal

import (
	"encoding/json"

	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

type joinPayload struct {
	Type            string `json:"type"`
	SessionCode     string `json:"sessionCode" validate:"required,max=64"`
	ParticipantName string `json:"participantName" validate:"required,max=36"`
}

func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := validate.Struct(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("invalid join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if l := ctl.opts.JoinLimiter; l != nil && !l.Allow(conn.token) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("client", conn.token).Msg("join rate limited")
		ctl.sendError(conn, "rate_limited")
		return
	}

	id, err := ctl.Orch.Join(sid, domain.SessionCode(p.SessionCode), p.ParticipantName)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join rejected")
		ctl.sendError(conn, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("participant", string(id)).
		Str("session", p.SessionCode).Msg("join")
}
