package lib

import (
	"io"
	"os"

	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02T15:04:05"

// Component names used as logger names across the binary
const (
	ComponentApp       = "APP"
	ComponentSubmitter = "SUBMITTER"
	ComponentContract  = "CONTRACT"
	ComponentHTTP      = "HTTP"
)

type LoggerConfig struct {
	Color    bool
	IsProd   bool
	JSON     bool
	FilePath string
}

// LoggerFactory builds per component loggers that share one encoder setup and
// one log file. The file always receives debug output; the console honours the
// level given to Component.
type LoggerFactory struct {
	cfg   LoggerConfig
	file  *os.File
	extra io.Writer
}

// NewLoggerFactory opens cfg.FilePath when set. extra, when not nil, receives a
// copy of every console line.
func NewLoggerFactory(cfg LoggerConfig, extra io.Writer) (*LoggerFactory, error) {
	f := &LoggerFactory{cfg: cfg, extra: extra}
	if cfg.FilePath != "" {
		file, err := os.OpenFile(cfg.FilePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			return nil, err
		}
		f.file = file
	}
	return f, nil
}

// Component returns a logger named name that writes to the console at level
func (f *LoggerFactory) Component(name string, level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(f.encoder(f.cfg.Color), zapcore.AddSync(os.Stdout), lvl),
	}
	if f.file != nil {
		cores = append(cores, zapcore.NewCore(f.encoder(false), zapcore.AddSync(f.file), zapcore.DebugLevel))
	}
	if f.extra != nil {
		cores = append(cores, zapcore.NewCore(f.encoder(false), zapcore.AddSync(f.extra), lvl))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if !f.cfg.IsProd {
		opts = append(opts, zap.Development())
	}
	log := zap.New(zapcore.NewTee(cores...), opts...).Named(name)
	return &Logger{SugaredLogger: log.Sugar()}, nil
}

// Close releases the log file; loggers built by the factory must not be used afterwards
func (f *LoggerFactory) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

func (f *LoggerFactory) encoder(color bool) zapcore.Encoder {
	var encoderCfg zapcore.EncoderConfig
	if f.cfg.IsProd {
		encoderCfg = zap.NewProductionEncoderConfig()
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	}

	if f.cfg.JSON {
		return zapcore.NewJSONEncoder(encoderCfg)
	}
	if color {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encoderCfg)
}

// NewTestLogger logs only to stdout
func NewTestLogger() *Logger {
	f := &LoggerFactory{}
	log, _ := f.Component("TEST", "debug")
	return log
}

type Logger struct {
	*zap.SugaredLogger
}

func (l *Logger) Named(name string) interfaces.ILogger {
	return &Logger{l.SugaredLogger.Named(name)}
}

func (l *Logger) With(args ...interface{}) interfaces.ILogger {
	return &Logger{l.SugaredLogger.With(args...)}
}
