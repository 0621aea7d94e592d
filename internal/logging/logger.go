package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the logger is built
type Options struct {
	Verbose bool      // development console logger at debug level
	Quiet   bool      // discard everything unless Verbose is set
	File    string    // optional rotated log file
	Output  io.Writer // console destination, os.Stderr when nil
}

// Rotation limits for the log file
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 30
)

// New builds a zap logger writing to stderr, teed into a rotated log file
// when one is configured. The returned closer releases the file.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	if opts.Quiet && !opts.Verbose && opts.File == "" {
		return zap.NewNop(), nopCloser{}, nil
	}

	var cores []zapcore.Core
	var closer io.Closer = nopCloser{}

	if !opts.Quiet || opts.Verbose {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		cores = append(cores, consoleCore(out, opts.Verbose))
	}

	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
		}
		encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lj), zap.NewAtomicLevelAt(zapcore.DebugLevel)))
		closer = lj
	}

	return zap.New(zapcore.NewTee(cores...)), closer, nil
}

// consoleCore mirrors the scanner defaults: a development console encoder when
// verbose, otherwise JSON at error level only.
func consoleCore(out io.Writer, verbose bool) zapcore.Core {
	ws := zapcore.Lock(zapcore.AddSync(out))
	if verbose {
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zapcore.NewCore(encoder, ws, zap.NewAtomicLevelAt(zapcore.DebugLevel))
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zapcore.NewCore(encoder, ws, zap.NewAtomicLevelAt(zapcore.ErrorLevel))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
