package app

import (
	"cmp"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	DefaultShuffleInterval  = 60 * time.Second
	DefaultShuffleCountdown = 5 * time.Second
)

type ShuffleOptions struct {
	Interval  time.Duration
	Countdown time.Duration
	Clock     clockwork.Clock
	// Rand is only used under a session lock; leave nil outside tests.
	Rand *rand.Rand
}

// session is the in-memory state of one session code.
// All fields below mu are guarded by it.
type session struct {
	code domain.SessionCode

	mu           sync.Mutex
	participants map[domain.UserID]core.MemberSession
	links        map[domain.UserID]domain.UserID
	seq          uint64
	scheduler    *Scheduler
	closed       bool
}

// SessionManager owns the process-wide session table. Sessions are created
// on first join and deleted when their last participant leaves.
// Lock order is manager, then session.
type SessionManager struct {
	ctx    context.Context
	cancel context.CancelFunc

	opts   ShuffleOptions
	policy Policy

	mu       sync.RWMutex
	sessions map[domain.SessionCode]*session
}

func NewSessionManager(parent context.Context, opts ShuffleOptions, policy Policy) *SessionManager {
	if opts.Interval <= 0 {
		opts.Interval = DefaultShuffleInterval
	}
	if opts.Countdown <= 0 {
		opts.Countdown = DefaultShuffleCountdown
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(parent)
	return &SessionManager{
		ctx:      ctx,
		cancel:   cancel,
		opts:     opts,
		policy:   policy,
		sessions: make(map[domain.SessionCode]*session),
	}
}

// Add registers ms under code, creating the session when absent, and
// broadcasts the new member list. It returns the participant count.
func (m *SessionManager) Add(code domain.SessionCode, ms core.MemberSession) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[code]
	if !ok {
		s = &session{
			code:         code,
			participants: make(map[domain.UserID]core.MemberSession),
			links:        make(map[domain.UserID]domain.UserID),
		}
		m.sessions[code] = s
		log.Info().Str("module", "app.sessions").Str("session", string(code)).Msg("session created")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ms.Meta().Seq = s.seq
	s.participants[ms.Meta().User.ID] = ms
	m.broadcastMembersLocked(s)

	log.Info().Str("module", "app.sessions").Str("session", string(code)).
		Str("participant", string(ms.Meta().User.ID)).Int("count", len(s.participants)).Msg("participant added")
	return len(s.participants)
}

// Remove drops id from the session. An emptied session has its scheduler
// stopped and is deleted; otherwise the remaining members get the new list.
// It returns the remaining count and whether id was present.
func (m *SessionManager) Remove(code domain.SessionCode, id domain.UserID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[code]
	if !ok {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; !ok {
		return len(s.participants), false
	}
	delete(s.participants, id)

	logger := log.With().Str("module", "app.sessions").Str("session", string(code)).Str("participant", string(id)).Logger()
	if len(s.participants) == 0 {
		s.closeLocked()
		delete(m.sessions, code)
		logger.Info().Msg("last participant left, session removed")
		return 0, true
	}

	m.broadcastMembersLocked(s)
	logger.Info().Int("count", len(s.participants)).Msg("participant removed")
	return len(s.participants), true
}

// TriggerShuffleCycle replaces any running scheduler: it shuffles right
// away and, with more than two participants, starts a recurring cycle.
func (m *SessionManager) TriggerShuffleCycle(code domain.SessionCode) {
	s, ok := m.get(code)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}

	m.shuffleLocked(s)

	if len(s.participants) <= 2 {
		return
	}
	sch := NewScheduler(m.opts.Clock, m.opts.Interval, m.opts.Countdown)
	s.scheduler = sch
	sch.Start(m.ctx,
		func(d time.Duration) { m.countdown(s, sch, d) },
		func() { m.scheduledShuffle(s, sch) },
	)
	log.Debug().Str("module", "app.sessions").Str("session", string(code)).
		Dur("interval", m.opts.Interval).Msg("shuffle cycle started")
}

// Shuffle recomputes the pairing of code now.
func (m *SessionManager) Shuffle(code domain.SessionCode) {
	s, ok := m.get(code)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	m.shuffleLocked(s)
}

func (m *SessionManager) countdown(s *session, sch *Scheduler, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.scheduler != sch {
		return
	}
	frame, err := core.Encode(core.CountdownMessage{Type: core.TypeCountdown, Duration: int(d / time.Second)})
	if err != nil {
		log.Error().Err(err).Str("module", "app.sessions").Msg("countdown encode")
		return
	}
	m.broadcastLocked(s, frame)
}

func (m *SessionManager) scheduledShuffle(s *session, sch *Scheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.scheduler != sch {
		return
	}
	m.shuffleLocked(s)
}

func (m *SessionManager) shuffleLocked(s *session) {
	members := s.sortedLocked()
	ids := lo.Map(members, func(ms core.MemberSession, _ int) domain.UserID { return ms.Meta().User.ID })

	links := Shuffle(ids, m.opts.Rand)
	if links == nil {
		return
	}

	next := make(map[domain.UserID]domain.UserID, len(links))
	for _, l := range links {
		next[l.From] = l.To
	}
	s.links = next

	for _, l := range links {
		from := s.participants[l.From]
		to := s.participants[l.To]
		frame, err := core.Encode(core.ShuffleMessage{
			Type:        core.TypeShuffle,
			PartnerID:   l.To,
			PartnerName: to.Meta().User.Username,
			Polite:      l.Polite,
		})
		if err != nil {
			log.Error().Err(err).Str("module", "app.sessions").Msg("shuffle encode")
			continue
		}
		m.sendLocked(s, from, frame)
	}
	log.Info().Str("module", "app.sessions").Str("session", string(s.code)).Int("links", len(links)).Msg("shuffled")
}

// Deliver sends frame to participant to of session code. It reports false
// when the recipient is absent or the send failed.
func (m *SessionManager) Deliver(code domain.SessionCode, to domain.UserID, frame core.Frame) bool {
	s, ok := m.get(code)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.participants[to]
	if !ok {
		return false
	}
	return m.sendLocked(s, ms, frame)
}

func (m *SessionManager) broadcastMembersLocked(s *session) {
	frame, err := core.Encode(core.ParticipantListMessage{
		Type:         core.TypeParticipantList,
		Participants: membersDTO(s.sortedLocked()),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.sessions").Msg("member list encode")
		return
	}
	m.broadcastLocked(s, frame)
}

func (m *SessionManager) broadcastLocked(s *session, frame core.Frame) {
	for _, ms := range s.participants {
		m.sendLocked(s, ms, frame)
	}
}

func (m *SessionManager) sendLocked(s *session, ms core.MemberSession, frame core.Frame) bool {
	err := ms.Signal().TrySend(frame)
	if err == nil {
		return true
	}
	logger := log.With().Str("module", "app.sessions").Str("session", string(s.code)).
		Str("participant", string(ms.Meta().User.ID)).Logger()
	if !errors.Is(err, core.ErrBackpressure) || m.policy == nil {
		logger.Debug().Err(err).Msg("send skipped")
		return false
	}
	switch m.policy.OnBackPressure(s.code, ms) {
	case KickMember:
		logger.Warn().Msg("slow consumer kicked")
		ms.Signal().Close()
	case DropFrame, NoAction:
		logger.Debug().Msg("frame dropped")
	}
	return false
}

// Members returns the participants of code in join order.
func (m *SessionManager) Members(code domain.SessionCode) ([]core.MemberDTO, bool) {
	s, ok := m.get(code)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return membersDTO(s.sortedLocked()), true
}

// Partner returns the partner id currently linked from id.
func (m *SessionManager) Partner(code domain.SessionCode, id domain.UserID) (domain.UserID, bool) {
	s, ok := m.get(code)
	if !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	to, ok := s.links[id]
	return to, ok
}

func (m *SessionManager) List() []core.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.SessionInfo, 0, len(m.sessions))
	for code, s := range m.sessions {
		s.mu.Lock()
		out = append(out, core.SessionInfo{Code: code, ParticipantCount: len(s.participants)})
		s.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b core.SessionInfo) int { return cmp.Compare(a.Code, b.Code) })
	return out
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every scheduler. The table itself is left to the process.
func (m *SessionManager) Close() {
	m.cancel()
}

func (m *SessionManager) get(code domain.SessionCode) (*session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[code]
	return s, ok
}

func (s *session) sortedLocked() []core.MemberSession {
	out := lo.Values(s.participants)
	slices.SortFunc(out, func(a, b core.MemberSession) int {
		return cmp.Compare(a.Meta().Seq, b.Meta().Seq)
	})
	return out
}

func (s *session) closeLocked() {
	s.closed = true
	s.links = nil
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
}

func membersDTO(members []core.MemberSession) []core.MemberDTO {
	return lo.Map(members, func(ms core.MemberSession, _ int) core.MemberDTO {
		u := ms.Meta().User
		return core.MemberDTO{ID: u.ID, Name: u.Username}
	})
}
