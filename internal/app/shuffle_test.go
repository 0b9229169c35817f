package app

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/dkeye/Shuffle/internal/domain"
	"github.com/stretchr/testify/require"
)

func ids(n int) []domain.UserID {
	out := make([]domain.UserID, n)
	for i := range out {
		out[i] = domain.UserID(fmt.Sprintf("p-%02d", i))
	}
	return out
}

// walk follows the links from start and returns the visited ids in order.
func walk(links []Link, start domain.UserID) []domain.UserID {
	next := make(map[domain.UserID]domain.UserID, len(links))
	for _, l := range links {
		next[l.From] = l.To
	}
	visited := []domain.UserID{start}
	for cur := next[start]; cur != start; cur = next[cur] {
		visited = append(visited, cur)
		if len(visited) > len(links) {
			break
		}
	}
	return visited
}

func TestShuffle_Too_Few_Participants(t *testing.T) {
	req := require.New(t)

	req.Nil(Shuffle(nil, nil))
	req.Nil(Shuffle(ids(1), nil))
}

func TestShuffle_Two_Participants_Form_A_Pair(t *testing.T) {
	req := require.New(t)
	members := []domain.UserID{"a", "b"}

	links := Shuffle(members, nil)

	req.Len(links, 2)
	partner := map[domain.UserID]domain.UserID{}
	polite := map[domain.UserID]bool{}
	for _, l := range links {
		partner[l.From] = l.To
		polite[l.From] = l.Polite
	}
	req.Equal(domain.UserID("b"), partner["a"])
	req.Equal(domain.UserID("a"), partner["b"])
	// exactly one side is polite
	req.NotEqual(polite["a"], polite["b"])
	req.True(polite["b"])
}

func TestShuffle_Forms_A_Single_Cycle(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for n := 2; n <= 12; n++ {
		for round := 0; round < 50; round++ {
			req := require.New(t)
			members := ids(n)

			links := Shuffle(members, rng)

			// Then exactly n links, one outgoing per participant, none to itself
			req.Len(links, n)
			out := map[domain.UserID]int{}
			in := map[domain.UserID]int{}
			for _, l := range links {
				req.NotEqual(l.From, l.To)
				out[l.From]++
				in[l.To]++
			}
			for _, id := range members {
				req.Equal(1, out[id], "outgoing links of %s", id)
				req.Equal(1, in[id], "incoming links of %s", id)
			}

			// And following the links visits everybody once
			req.ElementsMatch(members, walk(links, members[0]))
		}
	}
}

func TestShuffle_Does_Not_Modify_Input(t *testing.T) {
	req := require.New(t)
	members := ids(6)
	before := append([]domain.UserID(nil), members...)

	Shuffle(members, rand.New(rand.NewPCG(1, 2)))

	req.Equal(before, members)
}

func TestShuffle_Polite_Matches_Edge(t *testing.T) {
	req := require.New(t)

	for _, l := range Shuffle(ids(9), rand.New(rand.NewPCG(3, 4))) {
		req.Equal(Polite(l.From, l.To), l.Polite)
	}
}

func TestPolite_Is_Antisymmetric_And_Deterministic(t *testing.T) {
	req := require.New(t)
	members := ids(8)

	for _, a := range members {
		for _, b := range members {
			if a == b {
				continue
			}
			req.NotEqual(Polite(a, b), Polite(b, a), "pair %s/%s", a, b)
			req.Equal(Polite(a, b), Polite(a, b))
		}
	}
}

func TestShuffle_Eventually_Produces_Different_Orders(t *testing.T) {
	req := require.New(t)
	rng := rand.New(rand.NewPCG(42, 42))
	seen := map[string]struct{}{}

	for i := 0; i < 100; i++ {
		links := Shuffle(ids(4), rng)
		seen[fmt.Sprint(walk(links, "p-00"))] = struct{}{}
	}

	// 4 participants have 3! distinct cycles through p-00
	req.Len(seen, 6)
}
