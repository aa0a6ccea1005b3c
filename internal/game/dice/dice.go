// Package dice provides the random sources used for dice rolls and deck
// shuffles. Games never read global randomness; every game owns a Source so
// that a recorded seed reproduces the whole game.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Sides is the number of faces on each die.
const Sides = 6

// Source yields uniformly distributed integers in [0, n).
// *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a high-entropy seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roll is the face values of a pair of dice.
type Roll [2]int

// RollPair rolls two dice from src.
func RollPair(src Source) Roll {
	return Roll{src.Intn(Sides) + 1, src.Intn(Sides) + 1}
}

// Sum returns the total of both dice.
func (r Roll) Sum() int {
	return r[0] + r[1]
}

// Double reports whether both dice show the same face.
func (r Roll) Double() bool {
	return r[0] == r[1]
}

// Scripted replays a fixed sequence of die faces, cycling when exhausted.
// Tests use it to force specific rolls.
type Scripted struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewScripted creates a scripted source. Faces are 1-based die values.
func NewScripted(faces ...int) *Scripted {
	if len(faces) == 0 {
		faces = []int{1}
	}
	return &Scripted{faces: faces}
}

// Intn returns the next scripted face mapped into [0, n).
func (s *Scripted) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	face := s.faces[s.next%len(s.faces)]
	s.next++

	value := face - 1
	if value >= n {
		value = n - 1
	}
	if value < 0 {
		value = 0
	}
	return value
}

// Push appends more faces to the script.
func (s *Scripted) Push(faces ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces = append(s.faces, faces...)
}
