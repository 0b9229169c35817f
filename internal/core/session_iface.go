package core

import "github.com/dkeye/Shuffle/internal/domain"

type SessionID string

// MemberSession binds domain.Member and its transport endpoint.
// This is what a session stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID   domain.UserID `json:"id"`
	Name string        `json:"name"`
}

type SessionInfo struct {
	Code             domain.SessionCode `json:"code"`
	ParticipantCount int                `json:"participantCount"`
}
