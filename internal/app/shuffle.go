package app

import (
	"math/rand/v2"

	"github.com/dkeye/Shuffle/internal/domain"
)

// Link tells From to connect to To.
type Link struct {
	From   domain.UserID
	To     domain.UserID
	Polite bool
}

// Shuffle permutes ids uniformly and closes the permutation into a single
// directed cycle: every id gets exactly one outgoing link and nobody is
// linked to itself. Two ids degenerate into a mutual pair. Fewer than two
// ids produce no links.
//
// A nil rng uses the package-level source. ids is not modified.
func Shuffle(ids []domain.UserID, rng *rand.Rand) []Link {
	n := len(ids)
	if n < 2 {
		return nil
	}
	perm := make([]domain.UserID, n)
	copy(perm, ids)

	swap := func(i, j int) { perm[i], perm[j] = perm[j], perm[i] }
	if rng != nil {
		rng.Shuffle(n, swap)
	} else {
		rand.Shuffle(n, swap)
	}

	links := make([]Link, 0, n)
	for i, from := range perm {
		to := perm[(i+1)%n]
		links = append(links, Link{From: from, To: to, Polite: Polite(from, to)})
	}
	return links
}

// Polite decides the role of from on the edge from->to. It depends on the
// two ids only, so both ends compute it without a round-trip, and for
// a != b exactly one of Polite(a, b) and Polite(b, a) holds.
func Polite(from, to domain.UserID) bool {
	return from > to
}
