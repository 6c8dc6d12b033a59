package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/stackspledge/internal/constants"
)

// Rotation limits for the on-disk log. Sizes are in megabytes, age in days.
const (
	rotateSizeMB  = 10
	rotateKeep    = 3
	rotateAgeDays = 28
)

// Logger is nil until Init succeeds; the package-level helpers drop
// records while it is unset.
var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
}

// Path returns the log file location under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, "logs", constants.BinaryName+".log")
}

// Init points Logger at a rotating file under cfg.ConfigDir. Only warnings
// and errors are kept unless cfg.Debug is set, in which case records are
// also copied to stderr with caller info.
func Init(cfg Config) error {
	file := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}

	sink := io.Writer(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    rotateSizeMB,
		MaxBackups: rotateKeep,
		MaxAge:     rotateAgeDays,
		Compress:   true,
	})
	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.WarnLevel,
		Prefix:          constants.BinaryName,
	}
	if cfg.Debug {
		// stderr belongs to the board UI otherwise
		sink = io.MultiWriter(os.Stderr, sink)
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
	}

	Logger = log.NewWithOptions(sink, opts)
	return nil
}

func emit(level log.Level, msg string, keyvals []interface{}) {
	if Logger == nil {
		return
	}
	Logger.Helper()
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) { emit(log.DebugLevel, msg, keyvals) }

func Info(msg string, keyvals ...interface{}) { emit(log.InfoLevel, msg, keyvals) }

func Warn(msg string, keyvals ...interface{}) { emit(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...interface{}) { emit(log.ErrorLevel, msg, keyvals) }
