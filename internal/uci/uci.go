package uci

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/book"
	"github.com/halcyonchess/halcyon/internal/engine"
	"github.com/halcyonchess/halcyon/internal/tablebase"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	history  []uint64
	out      io.Writer
	outMu    sync.Mutex

	evalPath string
	tbCache  *tablebase.CachedProber

	openingBook *book.Book
	ownBook     bool

	searchDone chan struct{}
}

// New creates a new UCI protocol handler writing to stdout.
func New(eng *engine.Engine) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		out:      os.Stdout,
	}
}

// Run reads commands from r until EOF or "quit".
func (u *UCI) Run(r io.Reader) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok\n")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			u.closeTBCache()
			return
		case "setoption":
			u.handleSetOption(args)
		// Debug command
		case "d":
			u.send("%s\n", u.position.String())
		}
	}
	u.handleStop()
	u.closeTBCache()
}

// send writes one block of protocol output. The search goroutine and
// the command loop share the writer, so every write holds the lock.
func (u *UCI) send(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, "id name Halcyon")
	fmt.Fprintln(u.out, "id author Halcyon Team")
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, "option name Threads type spin default 1 min 1 max 256")
	fmt.Fprintln(u.out, "option name Hash type spin default 64 min 1 max 4096")
	fmt.Fprintln(u.out, "option name Contempt type spin default 0 min -100 max 100")
	fmt.Fprintln(u.out, "option name ContemptComplexity type spin default 0 min -100 max 100")
	fmt.Fprintln(u.out, "option name EvalFile type string default <empty>")
	fmt.Fprintln(u.out, "option name SyzygyCache type string default <empty>")
	fmt.Fprintln(u.out, "option name OwnBook type check default false")
	fmt.Fprintln(u.out, "option name BookFile type string default <empty>")
	fmt.Fprintln(u.out, "uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.NewGame()
	u.position = board.NewPosition()
	u.history = u.history[:0]
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesIdx := len(args)
	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesIdx = i
			moveStart = i + 1
			break
		}
	}

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
	case "fen":
		pos, err := board.ParseFEN(strings.Join(args[1:movesIdx], " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string Invalid FEN: %v\n", err)
			return
		}
		u.position = pos
	default:
		return
	}

	u.history = u.history[:0]
	for _, moveStr := range args[moveStart:] {
		move := u.parseMove(moveStr)
		if move == board.NoMove {
			fmt.Fprintf(os.Stderr, "info string Invalid move: %s\n", moveStr)
			return
		}
		u.history = append(u.history, u.position.Hash)
		u.position.MakeMove(move)
	}
}

// parseMove converts a UCI move string to the matching legal move.
func (u *UCI) parseMove(moveStr string) board.Move {
	if len(moveStr) < 4 {
		return board.NoMove
	}

	fromFile := int(moveStr[0] - 'a')
	fromRank := int(moveStr[1] - '1')
	toFile := int(moveStr[2] - 'a')
	toRank := int(moveStr[3] - '1')

	if fromFile < 0 || fromFile > 7 || fromRank < 0 || fromRank > 7 ||
		toFile < 0 || toFile > 7 || toRank < 0 || toRank > 7 {
		return board.NoMove
	}

	from := board.NewSquare(fromFile, fromRank)
	to := board.NewSquare(toFile, toRank)

	var promo board.PieceType
	if len(moveStr) == 5 {
		switch moveStr[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		}
	}

	moves := u.position.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if promo != 0 {
			if m.IsPromotion() && m.Promotion() == promo {
				return m
			}
		} else if !m.IsPromotion() {
			return m
		}
	}
	return board.NoMove
}

// goOptions holds parsed "go" command options.
type goOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	if u.ownBook && u.openingBook != nil {
		if move, ok := u.openingBook.Probe(u.position); ok {
			u.send("bestmove %s\n", move)
			return
		}
	}

	opts := u.parseGoOptions(args)
	limits := u.calculateLimits(opts)

	u.engine.SetPositionHistory(u.history)
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info)
	}

	pos := u.position.Copy()
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)

		info := u.engine.Search(pos, &limits)
		u.sendInfo(info)

		if info.BestMove != board.NoMove {
			u.send("bestmove %s\n", info.BestMove)
			return
		}
		// Checkmate or stalemate at the root.
		u.send("bestmove 0000\n")
	}()
}

// parseGoOptions parses "go" command arguments.
func (u *UCI) parseGoOptions(args []string) goOptions {
	opts := goOptions{}

	ms := func(s string) time.Duration {
		n, _ := strconv.Atoi(s)
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		if args[i] == "infinite" {
			opts.Infinite = true
			continue
		}
		if i+1 >= len(args) {
			break
		}
		switch args[i] {
		case "depth":
			opts.Depth, _ = strconv.Atoi(args[i+1])
			i++
		case "nodes":
			opts.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
			i++
		case "movetime":
			opts.MoveTime = ms(args[i+1])
			i++
		case "wtime":
			opts.WTime = ms(args[i+1])
			i++
		case "btime":
			opts.BTime = ms(args[i+1])
			i++
		case "winc":
			opts.WInc = ms(args[i+1])
			i++
		case "binc":
			opts.BInc = ms(args[i+1])
			i++
		case "movestogo":
			opts.MovesToGo, _ = strconv.Atoi(args[i+1])
			i++
		}
	}
	return opts
}

// calculateLimits converts goOptions to engine.Limits.
func (u *UCI) calculateLimits(opts goOptions) engine.Limits {
	limits := engine.Limits{}

	if opts.Infinite {
		limits.Infinite = true
		return limits
	}

	limits.Depth = opts.Depth
	limits.Nodes = opts.Nodes

	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
	} else if opts.WTime > 0 || opts.BTime > 0 {
		limits.MoveTime = u.calculateTimeForMove(opts)
	}
	return limits
}

// calculateTimeForMove determines how much time to spend on this move.
func (u *UCI) calculateTimeForMove(opts goOptions) time.Duration {
	var ourTime, ourInc time.Duration
	if u.position.SideToMove == board.White {
		ourTime, ourInc = opts.WTime, opts.WInc
	} else {
		ourTime, ourInc = opts.BTime, opts.BInc
	}

	movesRemaining := opts.MovesToGo
	if movesRemaining == 0 {
		movesRemaining = u.estimateMovesRemaining()
	}

	moveTime := ourTime/time.Duration(movesRemaining) + ourInc*90/100

	// Never use more than 90% of remaining time.
	if max := ourTime * 90 / 100; moveTime > max {
		moveTime = max
	}
	if moveTime < 10*time.Millisecond {
		moveTime = 10 * time.Millisecond
	}
	return moveTime
}

// estimateMovesRemaining estimates remaining moves by piece count.
func (u *UCI) estimateMovesRemaining() int {
	switch total := u.position.AllOccupied.PopCount(); {
	case total > 24:
		return 40
	case total > 12:
		return 30
	}
	return 20
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	if info.Depth == 0 {
		return
	}
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	if info.Score > engine.MateScore-int(engine.MaxHeight) {
		mateIn := (engine.MateScore - info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else if info.Score < -engine.MateScore+int(engine.MaxHeight) {
		mateIn := -(engine.MateScore + info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if info.TBHits > 0 {
		parts = append(parts, fmt.Sprintf("tbhits %d", info.TBHits))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.send("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for it to wind down.
func (u *UCI) handleStop() {
	if u.searchDone == nil {
		return
	}
	u.engine.Stop()
	<-u.searchDone
	u.searchDone = nil
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return
		}
		u.handleStop()
		if err := u.engine.SetThreads(n); err != nil {
			fmt.Fprintf(os.Stderr, "info string Failed to set threads: %v\n", err)
		}
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 {
			return
		}
		u.handleStop()
		u.engine.SetHash(mb)
	case "contempt":
		if cp, err := strconv.Atoi(value); err == nil {
			cfg := u.engine.Contempt()
			cfg.DrawPenalty = cp
			u.engine.SetContempt(cfg)
		}
	case "contemptcomplexity":
		if cp, err := strconv.Atoi(value); err == nil {
			cfg := u.engine.Contempt()
			cfg.Complexity = cp
			u.engine.SetContempt(cfg)
		}
	case "evalfile":
		u.handleStop()
		u.evalPath = value
		if value == "" || value == "<empty>" {
			u.engine.SetNetwork(nil)
			return
		}
		if err := u.engine.LoadNetwork(value); err != nil {
			fmt.Fprintf(os.Stderr, "info string Failed to load eval file: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "info string Eval file loaded from %s\n", value)
		}
	case "syzygycache":
		u.initTBCache(value)
	case "ownbook":
		u.ownBook = strings.EqualFold(value, "true")
	case "bookfile":
		if value == "" || value == "<empty>" {
			u.openingBook = nil
			return
		}
		b, err := book.Load(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string Failed to load book: %v\n", err)
			return
		}
		u.openingBook = b
		fmt.Fprintf(os.Stderr, "info string Book loaded, %d positions\n", b.Size())
	}
}

// initTBCache wires a persistent verdict cache over the built in
// material prober.
func (u *UCI) initTBCache(dir string) {
	u.closeTBCache()
	if dir == "" || dir == "<empty>" {
		u.engine.SetProber(tablebase.MaterialProber{})
		return
	}

	cache, err := tablebase.NewCachedProber(tablebase.MaterialProber{}, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string Failed to open tablebase cache: %v\n", err)
		return
	}
	u.tbCache = cache
	u.engine.SetProber(cache)
	fmt.Fprintf(os.Stderr, "info string Tablebase cache at %s\n", dir)
}

func (u *UCI) closeTBCache() {
	if u.tbCache != nil {
		_ = u.tbCache.Close()
		u.tbCache = nil
	}
}
