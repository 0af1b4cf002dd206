// Package daily derives the shared "board of the day" and records results.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"strconv"
	"time"

	"github.com/acciojob/memory-game-faizvk/internal/board"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// BoardSeed returns the deterministic board arrangement for a date and pair
// count: HMAC(salt, "YYYY-MM-DD|pairCount") seeds a PRNG that shuffles the
// value multiset. Everyone playing the same day and size gets the same board.
func BoardSeed(date time.Time, salt string, pairCount int) []int {
	if pairCount <= 0 {
		return nil
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + strconv.Itoa(pairCount)))
	sum := h.Sum(nil)
	// take first 8 bytes as the PRNG seed
	n := int64(binary.BigEndian.Uint64(sum[:8]))

	rng := rand.New(rand.NewSource(n))
	values := board.Values(pairCount)
	board.Shuffle(values, rng.Intn)
	return values
}
