package engine

// Per-thread evaluation caches. These are plain power-of-two tables
// embedded in the Thread so each worker probes its own memory and no
// cache line is ever shared between workers.

const (
	evalCacheSize = 1 << 14
	pkCacheSize   = 1 << 12
)

type evalCacheEntry struct {
	key   uint64
	value int32
	valid bool
}

type pawnKingEntry struct {
	key    uint64
	mg, eg int16
	valid  bool
}

// probeEval returns the cached static evaluation for key, if present.
func (t *Thread) probeEval(key uint64) (int, bool) {
	e := &t.evalCache[key&(evalCacheSize-1)]
	if e.valid && e.key == key {
		return int(e.value), true
	}
	return 0, false
}

func (t *Thread) storeEval(key uint64, value int) {
	e := &t.evalCache[key&(evalCacheSize-1)]
	*e = evalCacheEntry{key: key, value: int32(value), valid: true}
}

// probePawnKing returns the cached pawn/king structure terms for key.
func (t *Thread) probePawnKing(key uint64) (mg, eg int, ok bool) {
	e := &t.pkCache[key&(pkCacheSize-1)]
	if e.valid && e.key == key {
		return int(e.mg), int(e.eg), true
	}
	return 0, 0, false
}

func (t *Thread) storePawnKing(key uint64, mg, eg int) {
	e := &t.pkCache[key&(pkCacheSize-1)]
	*e = pawnKingEntry{key: key, mg: int16(mg), eg: int16(eg), valid: true}
}
