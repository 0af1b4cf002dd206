// internal/board/board.go
//
// Board generation for the memory game.
// Responsibilities:
//   - Build the paired value multiset {1,1,2,2,...,n,n}.
//   - Arrange it either from a caller-supplied seed (reproducible boards)
//     or by a uniform Fisher–Yates shuffle.
//   - Produce face-down tiles with IDs that are unique within the board.
//
// Notes:
//   - A malformed seed is never an error; generation falls back to a
//     random shuffle.
//   - The default randomness source is crypto/rand.

package board

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidPairCount is returned when a board is requested with pairCount <= 0
// or above MaxPairCount.
var ErrInvalidPairCount = errors.New("invalid pair count")

// MaxPairCount is the largest board the generator builds.
const MaxPairCount = 1 << 16

// Tile is one cell of the board.
type Tile struct {
	ID       string `json:"id"`       // "<value>-<index>", unique within a board
	Value    int    `json:"value"`    // 1..pairCount
	Revealed bool   `json:"revealed"` // face up, not yet confirmed
	Matched  bool   `json:"matched"`  // permanently face up
}

// Board is the ordered tile sequence; len(Board) == 2*pairCount.
type Board []Tile

// Clone returns a copy of b that shares no memory with it.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	copy(out, b)
	return out
}

// PairCount reports the number of distinct values on the board.
func (b Board) PairCount() int { return len(b) / 2 }

// AllMatched reports whether every tile is matched. An empty board is not solved.
func (b Board) AllMatched() bool {
	if len(b) == 0 {
		return false
	}
	for _, t := range b {
		if !t.Matched {
			return false
		}
	}
	return true
}

// Generator builds boards. Intn must return a uniform integer in [0, n).
type Generator struct {
	Intn func(n int) int
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{Intn: cryptoIntn}
}

var defaultGenerator = NewGenerator()

// Generate builds a board with the package default generator.
func Generate(pairCount int, seed []int) (Board, error) {
	return defaultGenerator.Generate(pairCount, seed)
}

// Generate builds a board for pairCount pairs.
// If seed is a valid arrangement of the value multiset it is used verbatim,
// otherwise the values are shuffled.
func (g *Generator) Generate(pairCount int, seed []int) (Board, error) {
	if pairCount <= 0 || pairCount > MaxPairCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPairCount, pairCount)
	}

	var values []int
	if ValidSeed(pairCount, seed) {
		values = append([]int(nil), seed...)
	} else {
		values = Values(pairCount)
		intn := g.Intn
		if intn == nil {
			intn = cryptoIntn
		}
		Shuffle(values, intn)
	}
	return fromValues(values), nil
}

// Values returns the unshuffled multiset {1,1,2,2,...,n,n} in pair order.
// It returns nil outside [1, MaxPairCount].
func Values(pairCount int) []int {
	if pairCount <= 0 || pairCount > MaxPairCount {
		return nil
	}
	out := make([]int, 0, 2*pairCount)
	for v := 1; v <= pairCount; v++ {
		out = append(out, v)
	}
	return append(out, out...)
}

// Shuffle permutes values in place (Fisher–Yates, last index down to 1).
func Shuffle(values []int, intn func(n int) int) {
	for i := len(values) - 1; i > 0; i-- {
		j := intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}

// ValidSeed reports whether seed has length 2*pairCount and holds every
// value in [1, pairCount] exactly twice.
func ValidSeed(pairCount int, seed []int) bool {
	if pairCount <= 0 || pairCount > MaxPairCount || len(seed) != 2*pairCount {
		return false
	}
	counts := make([]int, pairCount+1)
	for _, v := range seed {
		if v < 1 || v > pairCount {
			return false
		}
		counts[v]++
		if counts[v] > 2 {
			return false
		}
	}
	return true
}

// fromValues converts an arrangement into face-down tiles.
func fromValues(values []int) Board {
	b := make(Board, len(values))
	for i, v := range values {
		b[i] = Tile{ID: fmt.Sprintf("%d-%d", v, i), Value: v}
	}
	return b
}

// cryptoIntn returns a uniform integer in [0, n) from crypto/rand.
func cryptoIntn(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("board: crypto/rand failed: %v", err))
	}
	return int(nBig.Int64())
}
