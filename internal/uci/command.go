package uci

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/vatu/internal/board"
	"github.com/hailam/vatu/internal/engine"
)

// setup is the result of a position command: the position to search and
// the hashes of the game positions before it, oldest first.
type setup struct {
	position *board.Position
	history  []uint64
}

// parsePosition handles the arguments of
//
//	position startpos [moves m1 m2 ...]
//	position fen <fields> [moves m1 m2 ...]
//
// It builds a fresh position and never touches the session's.
func parsePosition(args []string) (setup, error) {
	if len(args) == 0 {
		return setup{}, fmt.Errorf("%w: position needs startpos or fen", ErrMalformedCommand)
	}

	movesAt := len(args)
	for i, a := range args {
		if a == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		if movesAt != 1 {
			return setup{}, fmt.Errorf("%w: unexpected %q after startpos", ErrMalformedCommand, args[1])
		}
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return setup{}, fmt.Errorf("%w: %w", ErrMalformedCommand, err)
		}
	default:
		return setup{}, fmt.Errorf("%w: position %q", ErrMalformedCommand, args[0])
	}

	var history []uint64
	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := pos.ParseMove(s)
			if err != nil {
				return setup{}, fmt.Errorf("%w: %w", ErrMalformedCommand, err)
			}
			history = append(history, pos.Hash)
			pos.MakeMove(m)
		}
	}
	return setup{position: pos, history: history}, nil
}

// parseGo turns go arguments into search limits. Times are in
// milliseconds.
func parseGo(args []string) (engine.SearchLimits, error) {
	var limits engine.SearchLimits
	for i := 0; i < len(args); i++ {
		key := args[i]
		switch key {
		case "infinite":
			limits.Infinite = true
			continue
		case "ponder":
			continue
		case "depth", "nodes", "movetime", "wtime", "btime", "winc", "binc", "movestogo":
		default:
			return limits, fmt.Errorf("%w: go %s", ErrMalformedCommand, key)
		}

		if i+1 >= len(args) {
			return limits, fmt.Errorf("%w: go %s needs a value", ErrMalformedCommand, key)
		}
		i++
		n, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			return limits, fmt.Errorf("%w: go %s %q", ErrMalformedCommand, key, args[i])
		}
		// Clocks may legitimately run negative in some GUIs; the rest may not.
		if n < 0 && key != "wtime" && key != "btime" {
			return limits, fmt.Errorf("%w: go %s %d", ErrMalformedCommand, key, n)
		}
		ms := time.Duration(n) * time.Millisecond

		switch key {
		case "depth":
			limits.Depth = int(n)
		case "nodes":
			limits.Nodes = uint64(n)
		case "movetime":
			limits.MoveTime = ms
		case "wtime":
			limits.HasClock = true
			limits.Time[board.White] = max(ms, 0)
		case "btime":
			limits.HasClock = true
			limits.Time[board.Black] = max(ms, 0)
		case "winc":
			limits.Inc[board.White] = ms
		case "binc":
			limits.Inc[board.Black] = ms
		case "movestogo":
			limits.MovesToGo = int(n)
		}
	}
	return limits, nil
}

// parseSetOption splits "name <words> value <words>".
func parseSetOption(args []string) (name, value string, err error) {
	var nameParts, valueParts []string
	var target *[]string
	for _, a := range args {
		switch a {
		case "name":
			target = &nameParts
		case "value":
			target = &valueParts
		default:
			if target == nil {
				return "", "", fmt.Errorf("%w: setoption needs name", ErrMalformedCommand)
			}
			*target = append(*target, a)
		}
	}
	if len(nameParts) == 0 {
		return "", "", fmt.Errorf("%w: setoption needs name", ErrMalformedCommand)
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " "), nil
}

// formatInfo renders one completed iteration as an info line.
func formatInfo(si engine.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d score %s nodes %d nps %d time %d",
		si.Depth, engine.UCIScore(si.Score), si.Nodes, si.NPS(), si.Time.Milliseconds())
	if len(si.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range si.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}
