package uci

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	maxMoveOverhead = 5000 * time.Millisecond
	engineName      = "Vatu"
	engineAuthor    = "the Vatu authors"
)

// optionLines are advertised in reply to "uci".
func (s *Session) optionLines() []string {
	return []string{
		fmt.Sprintf("option name MoveOverhead type spin default %d min 0 max %d",
			s.defaultOverhead.Milliseconds(), maxMoveOverhead.Milliseconds()),
	}
}

func (s *Session) setOption(name, value string) error {
	switch strings.ToLower(name) {
	case "moveoverhead":
		ms, err := strconv.Atoi(value)
		if err != nil || ms < 0 || time.Duration(ms)*time.Millisecond > maxMoveOverhead {
			return fmt.Errorf("%w: MoveOverhead %q", ErrMalformedCommand, value)
		}
		s.moveOverhead = time.Duration(ms) * time.Millisecond
		s.log.Debug().Dur("overhead", s.moveOverhead).Msg("move overhead set")
		return nil
	}
	return fmt.Errorf("%w: no option %q", ErrMalformedCommand, name)
}
