package app

import (
	"github.com/dkeye/Shuffle/internal/core"
	"github.com/dkeye/Shuffle/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a participant whose outbound buffer is full.
type Policy interface {
	OnBackPressure(code domain.SessionCode, member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks slow consumers. Closing the connection ends its read
// loop, which removes the participant like any other disconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.SessionCode, core.MemberSession) BackpressureAction {
	return KickMember
}
