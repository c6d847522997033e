package logs

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func GetLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

var tags = []string{
	"[DEBUG] ",
	"[INFO] ",
	"[WARN] ",
	"[ERROR] ",
	"[FATAL] ",
}

func (lv Level) tag() string {
	if lv >= LevelDebug && lv <= LevelFatal {
		return tags[lv]
	}
	return fmt.Sprintf("[?%d] ", lv)
}

type FormatLogger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
}

type Control interface {
	SetLevel(Level)
	SetOutput(io.Writer)
}

type FullLogger interface {
	FormatLogger
	Control
}

type stdLogger struct {
	stdLog *log.Logger
	level  Level
}

func (sl *stdLogger) SetOutput(w io.Writer) {
	sl.stdLog.SetOutput(w)
}

func (sl *stdLogger) SetLevel(lv Level) {
	sl.level = lv
}

func (sl *stdLogger) logf(lv Level, format string, v ...interface{}) {
	if sl.level > lv {
		return
	}
	sl.stdLog.Output(4, lv.tag()+fmt.Sprintf(format, v...))
	if lv == LevelFatal {
		os.Exit(1)
	}
}

func (sl *stdLogger) Debugf(format string, v ...interface{}) { sl.logf(LevelDebug, format, v...) }
func (sl *stdLogger) Infof(format string, v ...interface{})  { sl.logf(LevelInfo, format, v...) }
func (sl *stdLogger) Warnf(format string, v ...interface{})  { sl.logf(LevelWarn, format, v...) }
func (sl *stdLogger) Errorf(format string, v ...interface{}) { sl.logf(LevelError, format, v...) }
func (sl *stdLogger) Fatalf(format string, v ...interface{}) { sl.logf(LevelFatal, format, v...) }
