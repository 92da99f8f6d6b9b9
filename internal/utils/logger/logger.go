package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"

	"herdbook/internal/config"
)

type options struct {
	out   io.Writer
	level *slog.Level
}

type Option func(*options)

// WithFile пишет лог в файл с ротацией
func WithFile(path string) Option {
	return func(o *options) {
		if path == "" {
			return
		}
		o.out = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
	}
}

// WithLevel переопределяет уровень, выбранный по окружению
func WithLevel(level string) Option {
	return func(o *options) {
		if level == "" {
			return
		}
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return
		}
		o.level = &l
	}
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

func New(env string, opts ...Option) *slog.Logger {
	o := &options{out: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	level := slog.LevelInfo
	if env == config.EnvLocal || env == config.EnvDev {
		level = slog.LevelDebug
	}
	if o.level != nil {
		level = *o.level
	}

	var log *slog.Logger
	switch env {
	case config.EnvLocal:
		log = setupPrettySlog(o.out, level)
	default:
		log = slog.New(slog.NewJSONHandler(o.out, &slog.HandlerOptions{Level: level}))
	}

	return log
}

func setupPrettySlog(out io.Writer, level slog.Level) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: level},
	}

	return slog.New(opts.NewPrettyHandler(out))
}
