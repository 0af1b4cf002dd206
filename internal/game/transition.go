package game

// Select applies a tile pick to s and returns the resulting session.
//
// The pick is ignored (ok == false, s returned unchanged) when input is
// locked, index is out of bounds, or the tile is already matched or revealed.
// When the pick is the second of a turn, input is locked, attempts is
// incremented and the returned Resolution describes the pending commit.
func Select(s Session, index int) (next Session, res *Resolution, ok bool) {
	if s.InputLocked || index < 0 || index >= len(s.Tiles) {
		return s, nil, false
	}
	if t := s.Tiles[index]; t.Matched || t.Revealed {
		return s, nil, false
	}

	next = s.clone()
	next.Tiles[index].Revealed = true
	next.Selection = append(next.Selection, index)
	if len(next.Selection) < 2 {
		return next, nil, true
	}

	next.InputLocked = true
	next.Attempts++
	first, second := next.Selection[0], next.Selection[1]
	outcome := OutcomeMismatch
	if next.Tiles[first].Value == next.Tiles[second].Value {
		outcome = OutcomeMatch
	}
	return next, &Resolution{
		SessionID: next.ID,
		Turn:      next.Attempts,
		First:     first,
		Second:    second,
		Outcome:   outcome,
	}, true
}

// Commit applies a resolution decided by Select. It reports false and leaves
// s unchanged if r belongs to another session or turn.
func Commit(s Session, r Resolution) (Session, bool) {
	if r.SessionID != s.ID || r.Turn != s.Attempts || !s.InputLocked {
		return s, false
	}
	if len(s.Selection) != 2 || s.Selection[0] != r.First || s.Selection[1] != r.Second {
		return s, false
	}

	next := s.clone()
	for _, i := range []int{r.First, r.Second} {
		if r.Outcome == OutcomeMatch {
			next.Tiles[i].Matched = true
		} else {
			next.Tiles[i].Revealed = false
		}
	}
	next.Selection = nil
	next.InputLocked = false
	return next, true
}
