// Package uci drives the engine over the Universal Chess Interface.
package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/vatu/internal/board"
	"github.com/hailam/vatu/internal/engine"
	"github.com/hailam/vatu/internal/storage"
)

// Journal receives one record per finished search.
type Journal interface {
	Record(storage.SearchRecord) error
	Stats() (storage.Stats, error)
}

// Config carries the optional collaborators of a Session.
type Config struct {
	Logger       zerolog.Logger
	Journal      Journal // nil disables journaling
	MoveOverhead time.Duration
}

// maxLineLength bounds one command line; long games send every move in
// a single position command.
const maxLineLength = 4 << 20

type state int

const (
	stateIdle state = iota
	stateSearching
)

// Session owns the current position and runs at most one search at a time.
type Session struct {
	engine  *engine.Engine
	in      io.Reader
	out     *lineWriter
	log     zerolog.Logger
	journal Journal

	position *board.Position
	history  []uint64

	defaultOverhead time.Duration
	moveOverhead    time.Duration

	mu    sync.Mutex
	state state
	done  chan struct{} // closed once the last search has reported
}

// New creates an idle session reading commands from in and writing
// protocol output to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer, cfg Config) *Session {
	s := &Session{
		engine:          eng,
		in:              in,
		log:             cfg.Logger,
		journal:         cfg.Journal,
		position:        board.NewPosition(),
		defaultOverhead: cfg.MoveOverhead,
		moveOverhead:    cfg.MoveOverhead,
	}
	s.out = &lineWriter{w: out, log: cfg.Logger}
	eng.OnInfo = func(si engine.SearchInfo) {
		s.out.println(formatInfo(si))
	}
	return s
}

// Run reads commands until quit or end of input. A running search is
// stopped and its bestmove written before Run returns. Protocol errors
// are reported and survived; only a corrupt position ends the session
// with an error.
func (s *Session) Run() error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.log.Debug().Msg(">>> " + line)

		fields := strings.Fields(line)
		quit, err := s.dispatch(fields[0], fields[1:])
		if err != nil {
			if errors.Is(err, board.ErrCorruptPosition) {
				s.stopAndWait()
				return err
			}
			s.log.Warn().Err(err).Str("command", line).Msg("command rejected")
			s.out.println("info string " + err.Error())
		}
		if quit {
			return nil
		}
	}
	s.stopAndWait()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// dispatch runs one command and reports whether the session should end.
func (s *Session) dispatch(cmd string, args []string) (bool, error) {
	switch cmd {
	case "uci":
		s.out.println("id name " + engineName)
		s.out.println("id author " + engineAuthor)
		for _, l := range s.optionLines() {
			s.out.println(l)
		}
		s.out.println("uciok")
	case "isready":
		s.out.println("readyok")
	case "ucinewgame":
		return false, s.newGame()
	case "position":
		return false, s.setPosition(args)
	case "go":
		return false, s.goSearch(args)
	case "stop":
		s.stopAndWait()
	case "quit":
		s.stopAndWait()
		return true, nil
	case "setoption":
		name, value, err := parseSetOption(args)
		if err != nil {
			return false, err
		}
		return false, s.setOption(name, value)
	case "debug":
		return false, s.setDebug(args)
	case "d":
		for _, l := range strings.Split(strings.TrimRight(s.position.String(), "\n"), "\n") {
			s.out.println(l)
		}
	case "eval":
		return false, s.eval()
	case "perft":
		return false, s.perft(args)
	case "stats":
		return false, s.stats()
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return false, nil
}

func (s *Session) searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateSearching
}

func (s *Session) newGame() error {
	if s.searching() {
		return fmt.Errorf("%w: ucinewgame ignored", ErrBusy)
	}
	s.position = board.NewPosition()
	s.history = nil
	s.engine.Clear()
	return nil
}

func (s *Session) setPosition(args []string) error {
	if s.searching() {
		return fmt.Errorf("%w: position ignored", ErrBusy)
	}
	st, err := parsePosition(args)
	if err != nil {
		return err
	}
	s.position, s.history = st.position, st.history
	return nil
}

func (s *Session) goSearch(args []string) error {
	limits, err := parseGo(args)
	if err != nil {
		return err
	}
	if err := s.position.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == stateSearching {
		s.mu.Unlock()
		return fmt.Errorf("%w: go ignored", ErrBusy)
	}
	prev := s.done
	s.state = stateSearching
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	// The previous search may still be writing its bestmove.
	if prev != nil {
		<-prev
	}

	limits.MoveOverhead = s.moveOverhead
	fen := s.position.ToFEN()
	s.engine.SetHistory(s.history)
	s.log.Debug().Str("fen", fen).Int("depth", limits.Depth).Uint64("nodes", limits.Nodes).
		Dur("movetime", limits.MoveTime).Bool("infinite", limits.Infinite).Msg("search started")

	results := s.engine.Go(s.position, limits)
	go s.report(results, done, fen, s.log)
	return nil
}

// report waits for the search result, returns the session to idle and
// writes bestmove.
func (s *Session) report(results <-chan engine.Result, done chan struct{}, fen string, log zerolog.Logger) {
	defer close(done)
	res := <-results

	s.mu.Lock()
	s.state = stateIdle
	s.mu.Unlock()

	log.Info().Str("fen", fen).Stringer("move", res.Move).Int("score", res.Score).
		Int("depth", res.Depth).Uint64("nodes", res.Nodes).Dur("elapsed", res.Elapsed).
		Stringer("outcome", res.Outcome).Msg("search finished")

	if s.journal != nil {
		err := s.journal.Record(storage.SearchRecord{
			FEN:      fen,
			BestMove: res.Move.String(),
			Score:    res.Score,
			Depth:    res.Depth,
			Nodes:    res.Nodes,
			Elapsed:  res.Elapsed,
			Outcome:  res.Outcome.String(),
		})
		if err != nil {
			log.Error().Err(err).Msg("journal write failed")
		}
	}

	s.out.println("bestmove " + res.Move.String())
}

// stopAndWait cancels the running search, if any, and returns once its
// bestmove has been written.
func (s *Session) stopAndWait() {
	s.mu.Lock()
	done := s.done
	if s.state == stateSearching {
		s.engine.Stop()
	}
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Session) setDebug(args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("%w: debug wants on or off", ErrMalformedCommand)
	}
	if args[0] == "on" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return nil
}

func (s *Session) eval() error {
	b := engine.Explain(s.position)
	for _, l := range strings.Split(b.String(), "\n") {
		s.out.println("info string " + l)
	}
	s.out.println(fmt.Sprintf("info string eval %d (side to move)", engine.Evaluate(s.position)))
	return nil
}

func (s *Session) perft(args []string) error {
	if s.searching() {
		return fmt.Errorf("%w: perft ignored", ErrBusy)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: perft wants a depth", ErrMalformedCommand)
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 {
		return fmt.Errorf("%w: perft depth %q", ErrMalformedCommand, args[0])
	}

	start := time.Now()
	var total uint64
	for _, e := range s.position.Divide(depth) {
		s.out.println(fmt.Sprintf("%s: %d", e.Move, e.Nodes))
		total += e.Nodes
	}
	elapsed := time.Since(start)
	s.out.println("")
	s.out.println(fmt.Sprintf("Nodes searched: %d", total))
	s.log.Info().Int("depth", depth).Uint64("nodes", total).Dur("elapsed", elapsed).Msg("perft")
	return nil
}

func (s *Session) stats() error {
	if s.journal == nil {
		s.out.println("info string journal disabled")
		return nil
	}
	st, err := s.journal.Stats()
	if err != nil {
		return fmt.Errorf("read journal stats: %w", err)
	}
	s.out.println(fmt.Sprintf("info string searches %d checkmates %d stalemates %d nodes %d nps %d maxdepth %d",
		st.Searches, st.Checkmates, st.Stalemates, st.Nodes, st.NPS(), st.MaxDepth))
	return nil
}

// lineWriter serialises protocol output from the command loop and the
// search goroutine.
type lineWriter struct {
	mu  sync.Mutex
	w   io.Writer
	log zerolog.Logger
}

func (lw *lineWriter) println(line string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.log.Debug().Msg("<<< " + line)
	if _, err := io.WriteString(lw.w, line+"\n"); err != nil {
		lw.log.Error().Err(err).Msg("write failed")
	}
}
