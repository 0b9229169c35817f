package signal

import (
	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	user, code, ok := ctl.Orch.Whoami(sid)
	if !ok {
		ctl.sendError(conn, "unknown_connection")
		return
	}

	resp := struct {
		Type            string             `json:"type"`
		ParticipantID   domain.UserID      `json:"participantId"`
		ParticipantName string             `json:"participantName"`
		SessionCode     domain.SessionCode `json:"sessionCode,omitempty"`
		PartnerID       domain.UserID      `json:"partnerId,omitempty"`
	}{
		Type:            core.TypeWhoAmI,
		ParticipantID:   user.ID,
		ParticipantName: user.Username,
		SessionCode:     code,
	}
	if partner, ok := ctl.Orch.PartnerOf(sid); ok {
		resp.PartnerID = partner
	}
	ctl.sendJSON(conn, resp)
}
