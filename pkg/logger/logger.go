package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFilename = "tachiext.log"

// Logger is the process-wide structured logger. It discards everything until Init is called.
var Logger = zerolog.Nop()

var logFilePath string

// Init configures the console logger. Unknown levels fall back to info.
func Init(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	Logger = zerolog.New(consoleWriter()).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		Logger = Logger.With().Caller().Logger()
	}
}

// AddFileLogger tees log output into a rotating file inside dir
func AddFileLogger(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	logFilePath = filepath.Join(dir, logFilename)
	fileLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10,
		MaxAge:     3,
		MaxBackups: 3,
	}

	multi := zerolog.MultiLevelWriter(consoleWriter(), fileLogger)
	Logger = Logger.Output(multi)

	return nil
}

// GetLogFilePath returns the active log file, if any
func GetLogFilePath() string {
	return logFilePath
}

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.DateTime,
	}
}
