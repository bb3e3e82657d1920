// Command vatu is a UCI chess engine. It reads protocol commands on stdin
// and answers on stdout; diagnostics go to stderr or a log file.
package main

import (
	"flag"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/vatu/internal/engine"
	"github.com/hailam/vatu/internal/storage"
	"github.com/hailam/vatu/internal/uci"
)

var (
	debug        = flag.Bool("debug", false, "log the protocol transcript at debug level")
	logFile      = flag.String("log-file", "", "append logs to this file instead of stderr")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
	statsDir     = flag.String("stats-dir", "", "keep a search journal in this directory (\"default\" for the user data dir)")
	moveOverhead = flag.Duration("move-overhead", engine.DefaultMoveOverhead, "time reserved per move for GUI and transport lag")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	logger, closeLog, err := newLogger(*logFile, *debug)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Error().Err(err).Msg("open log file")
		return 1
	}
	defer closeLog()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			logger.Error().Err(err).Msg("could not create CPU profile")
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error().Err(err).Msg("could not start CPU profile")
			return 1
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	cfg := uci.Config{Logger: logger, MoveOverhead: *moveOverhead}

	dir := *statsDir
	if dir == "" {
		dir = os.Getenv("VATU_STATS_DIR")
	}
	if dir == "default" {
		if dir, err = storage.DefaultJournalDir(); err != nil {
			logger.Error().Err(err).Msg("locate data dir")
			return 1
		}
	}
	if dir != "" {
		journal, err := storage.Open(dir, logger)
		if err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("journal disabled")
		} else {
			defer journal.Close()
			cfg.Journal = journal
			logger.Info().Str("dir", dir).Msg("search journal enabled")
		}
	}

	session := uci.New(engine.NewEngine(), os.Stdin, os.Stdout, cfg)
	if err := session.Run(); err != nil {
		logger.Error().Err(err).Msg("session ended")
		return 1
	}
	return 0
}

// newLogger returns a console logger on stderr, or a JSON logger appending
// to path when one is given.
func newLogger(path string, debug bool) (zerolog.Logger, func(), error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	}
	return zerolog.New(w).With().Timestamp().Logger(), closeFn, nil
}
