// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package logrus adapts a logrus logger to the go-assessment log.Logger.
package logrus // import "perun.network/go-assessment/log/logrus"

import (
	"github.com/sirupsen/logrus"

	"perun.network/go-assessment/log"
)

// Logger wraps a logrus entry.
type Logger struct {
	*logrus.Entry
}

var _ log.Logger = (*Logger)(nil)

// FromLogrus creates a log.Logger from a logrus logger.
func FromLogrus(l *logrus.Logger) *Logger {
	return &Logger{logrus.NewEntry(l)}
}

// Set creates a logrus logger with the given level and text formatter and
// installs it as the framework logger.
func Set(level logrus.Level, formatter logrus.Formatter) {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	log.Set(FromLogrus(logger))
}

// WithField implements log.Logger.
func (l *Logger) WithField(key string, value interface{}) log.Logger {
	return &Logger{l.Entry.WithField(key, value)}
}

// WithFields implements log.Logger.
func (l *Logger) WithFields(fs log.Fields) log.Logger {
	return &Logger{l.Entry.WithFields(logrus.Fields(fs))}
}

// WithError implements log.Logger.
func (l *Logger) WithError(err error) log.Logger {
	return &Logger{l.Entry.WithError(err)}
}
