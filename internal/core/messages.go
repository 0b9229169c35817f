package core

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Shuffle/internal/domain"
)

// Message types exchanged over the signaling channel.
const (
	TypeJoinSession     = "joinSession"
	TypeJoinedSession   = "joinedSession"
	TypeParticipantList = "participantListUpdate"
	TypeShuffle         = "shuffle"
	TypeCountdown       = "shuffle-countdown"
	TypeWebRTCSignal    = "webrtc-signal"
	TypePing            = "ping"
	TypePong            = "pong"
	TypeWhoAmI          = "whoami"
	TypeError           = "error"
)

type JoinedSessionMessage struct {
	Type          string             `json:"type"`
	SessionCode   domain.SessionCode `json:"sessionCode"`
	ParticipantID domain.UserID      `json:"participantId"`
}

type ParticipantListMessage struct {
	Type         string      `json:"type"`
	Participants []MemberDTO `json:"participants"`
}

type ShuffleMessage struct {
	Type        string        `json:"type"`
	PartnerID   domain.UserID `json:"partnerId"`
	PartnerName string        `json:"partnerName"`
	Polite      bool          `json:"polite"`
}

type CountdownMessage struct {
	Type string `json:"type"`
	// Duration is in whole seconds.
	Duration int `json:"duration"`
}

type SignalMessage struct {
	Type   string          `json:"type"`
	From   domain.UserID   `json:"from"`
	Signal json.RawMessage `json:"signal"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}
