package app

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
)

// recordingConn is an in-memory SignalConnection that keeps every frame.
type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *recordingConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

type envelope struct {
	Type         string           `json:"type"`
	Participants []core.MemberDTO `json:"participants"`
	PartnerID    domain.UserID    `json:"partnerId"`
	PartnerName  string           `json:"partnerName"`
	Polite       bool             `json:"polite"`
	Duration     int              `json:"duration"`
	From         domain.UserID    `json:"from"`
	Signal       json.RawMessage  `json:"signal"`
}

func (c *recordingConn) messages(typ string) []envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []envelope
	for _, f := range c.frames {
		var e envelope
		if err := json.Unmarshal(f, &e); err != nil {
			continue
		}
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (c *recordingConn) count(typ string) int {
	return len(c.messages(typ))
}

func (c *recordingConn) last(typ string) (envelope, bool) {
	msgs := c.messages(typ)
	if len(msgs) == 0 {
		return envelope{}, false
	}
	return msgs[len(msgs)-1], true
}

type testMember struct {
	session core.MemberSession
	conn    *recordingConn
}

func (m testMember) id() domain.UserID { return m.session.Meta().User.ID }

func newTestMember(id, name string) testMember {
	conn := &recordingConn{}
	user := &domain.User{ID: domain.UserID(id), Username: name}
	return testMember{
		session: core.NewMemberSession(domain.NewMember(user), conn),
		conn:    conn,
	}
}

func names(dtos []core.MemberDTO) []string {
	out := make([]string, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.Name)
	}
	return out
}
