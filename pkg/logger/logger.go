package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Leveled global logger for the collections service.
// Init(level) picks the threshold; SetOutput/UseFile pick the destination.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
	closer io.Closer
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
}

func parseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetOutput redirects log lines to w. Passing nil restores stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	logger = log.New(w, "", 0)
}

// UseFile writes log lines to both stdout and a size-rotated file at path.
// An empty path is a no-op.
func UseFile(path string, maxSizeMB, maxBackups int) {
	if path == "" {
		return
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = lj
	logger = log.New(io.MultiWriter(os.Stdout, lj), "", 0)
}

// Close releases the rotating file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func header(lvl string) string {
	return fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(lvl))
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(lvl Level, name, prefix, format string, v ...interface{}) {
	if !shouldLog(lvl) {
		return
	}
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Printf(header(name)+prefix+format, v...)
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, "debug", "", format, v...) }
func Infof(format string, v ...interface{})  { output(LevelInfo, "info", "", format, v...) }
func Warnf(format string, v ...interface{})  { output(LevelWarn, "warn", "", format, v...) }
func Errorf(format string, v ...interface{}) { output(LevelError, "error", "", format, v...) }

func Fatalf(format string, v ...interface{}) {
	output(LevelFatal, "fatal", "", format, v...)
	os.Exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// Entry prefixes every line with a tag, e.g. a request id.
type Entry struct {
	prefix string
}

// Tagged returns an Entry whose lines carry "[tag] ". An empty tag adds nothing.
func Tagged(tag string) Entry {
	if tag == "" {
		return Entry{}
	}
	return Entry{prefix: "[" + tag + "] "}
}

func (e Entry) Debugf(format string, v ...interface{}) {
	output(LevelDebug, "debug", e.prefix, format, v...)
}
func (e Entry) Infof(format string, v ...interface{}) {
	output(LevelInfo, "info", e.prefix, format, v...)
}
func (e Entry) Warnf(format string, v ...interface{}) {
	output(LevelWarn, "warn", e.prefix, format, v...)
}
func (e Entry) Errorf(format string, v ...interface{}) {
	output(LevelError, "error", e.prefix, format, v...)
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
