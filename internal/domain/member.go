package domain

// Member represents user's participation meta for a session.
// No transport or lifecycle logic here.
type Member struct {
	User *User
	// Seq orders members by join time inside a session.
	Seq uint64
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user *User) *Member {
	return &Member{User: user}
}
