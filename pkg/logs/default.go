package logs

import (
	"io"
	"log"
	"os"
)

type Config struct {
	Level string `json:"level" mapstructure:"level"`
}

var logger FullLogger = &stdLogger{
	level:  LevelInfo,
	stdLog: log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile|log.Lmicroseconds),
}

// SetOutput sets the output of the default logger. By default, it is stderr.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLevel sets the level below which logs will not be output.
// Not concurrent-safe; call it during startup only.
func SetLevel(lv Level) {
	logger.SetLevel(lv)
}

func Init(cfg Config) {
	SetLevel(GetLevel(cfg.Level))
}

// SetLogger replaces the default logger. Not concurrent-safe and must not
// be called after the global functions in this package are in use.
func SetLogger(v FullLogger) {
	logger = v
}

func Debugf(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

func Infof(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

func Warnf(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

// Fatalf logs and then exits the process.
func Fatalf(format string, v ...interface{}) {
	logger.Fatalf(format, v...)
}
