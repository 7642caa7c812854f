// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger holds the levelled logger shared by the commands and
// handed to the simulation engines.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger
var Logger *log.Logger

// out is the current destination, closed on reconfiguration if a file
var out io.Writer = os.Stderr

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure sets the level (debug, info, warn, error; empty uses the
// NEUROSIMS_LOG_LEVEL environment variable, then info) and the output:
// logFile is appended to, or stderr if empty.
func Configure(level string, logFile string) error {
	if level == "" {
		level = os.Getenv("NEUROSIMS_LOG_LEVEL")
	}
	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		w = f
	}
	if c, ok := out.(io.Closer); ok && out != os.Stderr {
		c.Close()
	}
	out = w
	Logger = log.New(w)
	Logger.SetTimeFormat("")
	Logger.SetLevel(ParseLevel(level))
	return nil
}

// ParseLevel converts a level name, defaulting to info
func ParseLevel(level string) log.Level {
	lv, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lv
}

// New returns a logger for one component, writing where the global
// logger does, at its level, with the component as prefix.
func New(component string) *log.Logger {
	lg := log.NewWithOptions(out, log.Options{Prefix: component})
	lg.SetLevel(Logger.GetLevel())
	return lg
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
