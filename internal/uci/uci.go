// Package uci adapts the engine core to the Universal Chess Interface text
// protocol on stdin/stdout.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/SafeMemoryZone/knight-rider/internal/board"
	"github.com/SafeMemoryZone/knight-rider/internal/engine"
)

const (
	engineName   = "knight-rider"
	engineAuthor = "knight-rider authors"

	defaultHashMB = 10
	minHashMB     = 1
	maxHashMB     = 131072
)

// Engine is the UCI protocol handler. It owns the idle position; during a
// search the manager holds a clone, so the handler can keep serving commands.
type Engine struct {
	pos     *board.Position
	tt      *engine.TranspositionTable
	manager *engine.SearchManager

	debug bool
	log   zerolog.Logger

	// printMu serialises stdout between the command loop and the best-move
	// callback running on the search worker.
	printMu sync.Mutex
	out     io.Writer
}

// New builds a protocol handler writing UCI output to out.
func New(out io.Writer, log zerolog.Logger) *Engine {
	return &Engine{
		pos:     board.NewPosition(),
		tt:      engine.NewTranspositionTable(defaultHashMB, log),
		manager: engine.NewSearchManager(log),
		log:     log,
		out:     out,
	}
}

func (e *Engine) println(args ...any) {
	e.printMu.Lock()
	defer e.printMu.Unlock()
	fmt.Fprintln(e.out, args...)
}

// debugf emits an "info string" diagnostic when debug mode is on.
func (e *Engine) debugf(format string, args ...any) {
	if e.debug {
		e.println("info string " + fmt.Sprintf(format, args...))
	}
}

// Run reads commands from in until EOF or "quit".
func (e *Engine) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Keywords are matched case-insensitively; the original tokens are
		// kept for FEN fields.
		tokens := strings.Fields(line)
		lower := make([]string, len(tokens))
		for i, t := range tokens {
			lower[i] = strings.ToLower(t)
		}

		switch lower[0] {
		case "uci":
			e.handleUCI()
		case "debug":
			e.handleDebug(lower[1:])
		case "isready":
			e.println("readyok")
		case "setoption":
			e.handleSetOption(tokens[1:], lower[1:])
		case "ucinewgame":
			e.pos = board.NewPosition()
			e.debugf("new UCI game initialized")
		case "position":
			e.handlePosition(tokens[1:], lower[1:])
		case "go":
			e.handleGo(tokens[1:], lower[1:])
		case "d":
			e.println(e.pos.Pretty())
		case "ponderhit":
			e.debugf("'ponderhit' not implemented yet")
		case "stop":
			e.manager.StopSearch()
		case "quit":
			e.manager.StopSearch()
			return
		default:
			e.debugf("unknown command %q", lower[0])
		}
	}
}

func (e *Engine) handleUCI() {
	e.println("id name " + engineName)
	e.println("id author " + engineAuthor)
	e.println(fmt.Sprintf("option name Hash type spin default %d min %d max %d", defaultHashMB, minHashMB, maxHashMB))
	e.println("option name Clear Hash type button")
	e.println("uciok")
}

func (e *Engine) handleDebug(args []string) {
	if len(args) == 0 {
		e.debugf("missing argument")
		return
	}
	switch args[0] {
	case "on":
		e.debug = true
		e.log = e.log.Level(zerolog.DebugLevel)
	case "off":
		e.debug = false
		e.log = e.log.Level(zerolog.InfoLevel)
	default:
		e.debugf("expected 'on' or 'off'")
	}
}

func (e *Engine) handleSetOption(tokens, lower []string) {
	if len(lower) == 0 || lower[0] != "name" {
		e.debugf("setoption: expected 'name'")
		return
	}

	var name, value []string
	i := 1
	for ; i < len(lower) && lower[i] != "value"; i++ {
		name = append(name, lower[i])
	}
	if i < len(tokens) && lower[i] == "value" {
		for i++; i < len(tokens); i++ {
			value = append(value, tokens[i])
		}
	}

	switch strings.Join(name, " ") {
	case "hash":
		if len(value) == 0 {
			e.debugf("setoption Hash: missing value")
			return
		}
		mb, err := strconv.Atoi(value[0])
		if err != nil {
			e.debugf("setoption Hash: invalid value %q", value[0])
			return
		}
		if mb < minHashMB {
			mb = minHashMB
		}
		if mb > maxHashMB {
			mb = maxHashMB
		}
		e.tt.Resize(mb)
		e.debugf("TT resized to %d MiB", mb)
	case "clear hash":
		e.tt.Clear()
		e.debugf("TT cleared")
	default:
		e.debugf("setoption: unknown option %q", strings.Join(name, " "))
	}
}

func (e *Engine) handlePosition(tokens, lower []string) {
	if len(lower) == 0 {
		e.debugf("missing argument")
		return
	}

	pos := 0
	switch lower[pos] {
	case "startpos":
		e.pos = board.NewPosition()
		pos++
	case "fen":
		pos++
		fenEnd := pos
		for fenEnd < len(lower) && lower[fenEnd] != "moves" {
			fenEnd++
		}
		if fenEnd == pos {
			e.debugf("missing FEN")
			return
		}
		parsed, err := board.ParseFEN(strings.Join(tokens[pos:fenEnd], " "))
		if err != nil {
			e.log.Warn().Err(err).Msg("rejected position command")
			e.debugf("invalid FEN string: %v", err)
			return
		}
		e.pos = parsed
		pos = fenEnd
	default:
		e.debugf("expected 'startpos' or 'fen'")
		return
	}

	if pos < len(lower) && lower[pos] == "moves" {
		for pos++; pos < len(lower); pos++ {
			lan := lower[pos]
			applied := false
			legal := e.pos.GenerateLegalMoves()
			for i := 0; i < legal.Len(); i++ {
				if legal.Get(i).String() == lan {
					e.pos.MakeMove(legal.Get(i))
					applied = true
					break
				}
			}
			if !applied {
				e.debugf("illegal or unknown move: %s", lan)
			}
		}
	}

	e.debugf("position set")
}

var goKeywords = map[string]bool{
	"searchmoves": true, "ponder": true, "wtime": true, "btime": true,
	"winc": true, "binc": true, "movestogo": true, "depth": true,
	"nodes": true, "mate": true, "movetime": true, "infinite": true,
}

func (e *Engine) handleGo(tokens, lower []string) {
	commandReceived := time.Now()

	var limits engine.GoLimits
	isPerft := false
	perftDepth := 0

	parseInt := func(pos *int) (int, bool) {
		if *pos >= len(tokens) {
			return 0, false
		}
		v, err := strconv.Atoi(tokens[*pos])
		*pos++
		return v, err == nil
	}

	pos := 0
	for pos < len(lower) {
		kw := lower[pos]
		pos++
		switch kw {
		case "searchmoves":
			for pos < len(lower) && !goKeywords[lower[pos]] {
				lan := lower[pos]
				found := false
				legal := e.pos.GenerateLegalMoves()
				for i := 0; i < legal.Len(); i++ {
					if legal.Get(i).String() == lan {
						limits.SearchMoves = append(limits.SearchMoves, legal.Get(i))
						found = true
						break
					}
				}
				if !found {
					e.debugf("ignoring unknown searchmove %q", lan)
				}
				pos++
			}
		case "ponder":
			limits.Ponder = true
		case "wtime":
			if v, ok := parseInt(&pos); ok {
				limits.TimeLeftMS[board.White] = int64(v)
			} else {
				e.debugf("missing/invalid wtime value")
			}
		case "btime":
			if v, ok := parseInt(&pos); ok {
				limits.TimeLeftMS[board.Black] = int64(v)
			} else {
				e.debugf("missing/invalid btime value")
			}
		case "winc":
			if v, ok := parseInt(&pos); ok {
				limits.IncMS[board.White] = int64(v)
			} else {
				e.debugf("missing/invalid winc value")
			}
		case "binc":
			if v, ok := parseInt(&pos); ok {
				limits.IncMS[board.Black] = int64(v)
			} else {
				e.debugf("missing/invalid binc value")
			}
		case "movestogo":
			if v, ok := parseInt(&pos); ok {
				limits.MovesToGo = v
			} else {
				e.debugf("missing/invalid movestogo value")
			}
		case "depth":
			if v, ok := parseInt(&pos); ok {
				limits.DepthLimit = v
			} else {
				e.debugf("missing/invalid depth value")
			}
		case "nodes":
			if v, ok := parseInt(&pos); ok {
				limits.NodeLimit = int64(v)
			} else {
				e.debugf("missing/invalid nodes value")
			}
		case "mate":
			if v, ok := parseInt(&pos); ok {
				limits.MateInN = v
			} else {
				e.debugf("missing/invalid mate value")
			}
		case "movetime":
			if v, ok := parseInt(&pos); ok {
				limits.MoveTimeMS = int64(v)
			} else {
				e.debugf("missing/invalid movetime value")
			}
		case "infinite":
			limits.Infinite = true
		case "perft":
			if v, ok := parseInt(&pos); ok {
				perftDepth = v
			} else {
				e.debugf("missing depth parameter")
			}
			isPerft = true
		default:
			e.debugf("unknown go-token %q", kw)
			return
		}
	}

	if isPerft {
		e.runPerft(perftDepth)
		return
	}

	e.log.Debug().Str("position", e.pos.ToFEN()).Msg("search started")
	e.manager.RunSearch(e.pos, limits, commandReceived, func(best board.Move) {
		e.println("bestmove " + best.String())
	}, e.tt)
}

func (e *Engine) runPerft(depth int) {
	if depth < 1 {
		depth = 1
	}
	start := time.Now()
	entries, total := board.PerftDivide(e.pos, depth)
	for _, entry := range entries {
		e.println(fmt.Sprintf("%s: %d", entry.Move, entry.Nodes))
	}
	elapsed := time.Since(start)

	printer := message.NewPrinter(language.English)
	e.println(printer.Sprintf("\nNodes searched: %d in %v (%d n/s)\n",
		total, elapsed, int64(float64(total)/max(elapsed.Seconds(), 1e-9))))
}
