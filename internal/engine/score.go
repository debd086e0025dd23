package engine

// Score packs a midgame and an endgame value into one int32, so tapered
// terms combine with plain integer adds and negate as a unit.
type Score int32

// MakeScore builds a packed score from its midgame and endgame terms.
func MakeScore(mg, eg int) Score {
	return Score(int32(eg)<<16 + int32(mg))
}

// MG extracts the midgame term.
func (s Score) MG() int {
	return int(int16(s))
}

// EG extracts the endgame term. The rounding constant keeps extraction
// exact when the midgame half is negative.
func (s Score) EG() int {
	return int(int16((int32(s) + 0x8000) >> 16))
}
