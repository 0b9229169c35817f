package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_Generates_Distinct_IDs(t *testing.T) {
	req := require.New(t)

	a, err := NewUser("alice")
	req.NoError(err)
	b, err := NewUser("alice")
	req.NoError(err)

	req.NotEqual(a.ID, b.ID)
	req.Len(string(a.ID), MaxUserIDLen)
	req.Equal("alice", a.Username)
}

func TestNewUser_Rejects_Invalid_Names(t *testing.T) {
	req := require.New(t)

	_, err := NewUser("")
	req.ErrorIs(err, ErrUsernameEmpty)

	_, err = NewUser(strings.Repeat("x", MaxUsernameLen+1))
	req.ErrorIs(err, ErrUsernameTooLong)

	// multi-byte names are counted in runes
	u, err := NewUser(strings.Repeat("é", MaxUsernameLen))
	req.NoError(err)
	req.NotNil(u)
}

func TestUser_SetUsername(t *testing.T) {
	req := require.New(t)
	u, err := NewUser("bob")
	req.NoError(err)

	req.ErrorIs(u.SetUsername(""), ErrUsernameEmpty)
	req.Equal("bob", u.Username)

	req.NoError(u.SetUsername("robert"))
	req.Equal("robert", u.Username)
}

func TestSessionCode_Validate(t *testing.T) {
	req := require.New(t)

	req.ErrorIs(SessionCode("").Validate(), ErrSessionCodeEmpty)
	req.ErrorIs(SessionCode(strings.Repeat("c", MaxSessionCodeLen+1)).Validate(), ErrSessionCodeTooLong)
	req.NoError(SessionCode("X").Validate())
}
