package core

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) TrySend(Frame) error { return nil }
func (nopConn) Close()              {}

func TestNewMemberSession(t *testing.T) {
	req := require.New(t)
	user, err := domain.NewUser("alice")
	req.NoError(err)
	meta := domain.NewMember(user)

	ms := NewMemberSession(meta, nopConn{})

	req.Same(meta, ms.Meta())
	req.Equal(nopConn{}, ms.Signal())
}

func TestEncode_Signal_Keeps_Payload_Opaque(t *testing.T) {
	req := require.New(t)
	payload := json.RawMessage(`{"sdp":"v=0\r\n","type":"offer"}`)

	frame, err := Encode(SignalMessage{Type: TypeWebRTCSignal, From: "a", Signal: payload})
	req.NoError(err)

	req.JSONEq(`{"type":"webrtc-signal","from":"a","signal":{"sdp":"v=0\r\n","type":"offer"}}`, string(frame))
}

func TestEncode_Shuffle(t *testing.T) {
	req := require.New(t)

	frame, err := Encode(ShuffleMessage{Type: TypeShuffle, PartnerID: "b", PartnerName: "Bob", Polite: true})
	req.NoError(err)

	req.JSONEq(`{"type":"shuffle","partnerId":"b","partnerName":"Bob","polite":true}`, string(frame))
}
