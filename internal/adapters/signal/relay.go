package signal

import (
	"encoding/json"

	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/rs/zerolog/log"
)

type relayPayload struct {
	Type   string          `json:"type"`
	To     string          `json:"to" validate:"required"`
	Signal json.RawMessage `json:"signal"`
}

func (ctl *SignalWSController) handleRelay(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p relayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}
	if err := validate.Struct(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("invalid signal payload")
		return
	}
	if !conn.allowSignal() {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("signal rate limited")
		return
	}
	ctl.Orch.Relay(sid, domain.UserID(p.To), p.Signal)
}
