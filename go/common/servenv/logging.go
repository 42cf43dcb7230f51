// Copyright 2026 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package servenv sets up the process environment shared by the planner
// binaries.
package servenv

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	logLevelKey  = "log-level"
	logFormatKey = "log-format"
	logOutputKey = "log-output"
)

// Logger builds the process logger from the log-level, log-format and
// log-output settings of a viper instance.
type Logger struct {
	v *viper.Viper

	loggerOnce sync.Once
	loggerMu   sync.Mutex
	logger     *slog.Logger
	closer     io.Closer
}

// NewLogger creates a Logger reading its settings from v.
func NewLogger(v *viper.Viper) *Logger {
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(logFormatKey, "json")
	v.SetDefault(logOutputKey, "stderr")
	return &Logger{v: v}
}

// RegisterFlags registers logging-related command line flags and binds them
// to the viper instance.
func (lg *Logger) RegisterFlags(fs *pflag.FlagSet) {
	fs.String(logLevelKey, lg.v.GetString(logLevelKey), "Log level (debug, info, warn, error)")
	fs.String(logFormatKey, lg.v.GetString(logFormatKey), "Log format (json, text)")
	fs.String(logOutputKey, lg.v.GetString(logOutputKey), "Log output (stdout, stderr, or file path)")
	for _, key := range []string{logLevelKey, logFormatKey, logOutputKey} {
		_ = lg.v.BindPFlag(key, fs.Lookup(key))
	}
}

// SetupLogging creates the logger and installs it as the slog default. Only
// the first call has any effect.
func (lg *Logger) SetupLogging() (*slog.Logger, error) {
	var setupErr error
	lg.loggerOnce.Do(func() {
		levelStr := lg.v.GetString(logLevelKey)
		level, err := parseLevel(levelStr)
		if err != nil {
			setupErr = err
			return
		}

		var output io.Writer
		outputStr := lg.v.GetString(logOutputKey)
		switch strings.ToLower(outputStr) {
		case "", "stderr":
			output = os.Stderr
		case "stdout":
			output = os.Stdout
		default:
			file, err := os.OpenFile(outputStr, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				setupErr = fmt.Errorf("failed to open log output %s: %w", outputStr, err)
				return
			}
			output = file
			lg.closer = file
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		formatStr := lg.v.GetString(logFormatKey)
		switch strings.ToLower(formatStr) {
		case "text":
			handler = slog.NewTextHandler(output, opts)
		case "", "json":
			handler = slog.NewJSONHandler(output, opts)
		default:
			setupErr = fmt.Errorf("unknown log format %q", formatStr)
			return
		}

		newLogger := slog.New(handler)
		slog.SetDefault(newLogger)

		lg.loggerMu.Lock()
		lg.logger = newLogger
		lg.loggerMu.Unlock()

		newLogger.Debug("logging initialized",
			"level", levelStr,
			"format", formatStr,
			"output", outputStr,
		)
	})
	if setupErr != nil {
		return nil, setupErr
	}
	return lg.GetLogger(), nil
}

// GetLogger returns the configured logger, or the slog default if
// SetupLogging has not succeeded.
func (lg *Logger) GetLogger() *slog.Logger {
	lg.loggerMu.Lock()
	defer lg.loggerMu.Unlock()
	if lg.logger == nil {
		return slog.Default()
	}
	return lg.logger
}

// Close closes the log file, if logging goes to one.
func (lg *Logger) Close() error {
	if lg.closer == nil {
		return nil
	}
	return lg.closer.Close()
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
