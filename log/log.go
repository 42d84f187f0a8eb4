// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package log is the logging facade of go-assessment. Applications set their
// logger once with Set; every package logs through the package-level
// functions or a Logger derived with WithField.
//
// The interface mimics logrus, which is the logger of choice. An adapter
// lives in the log/logrus subpackage.
package log // import "perun.network/go-assessment/log"

import "sync"

var (
	mu sync.RWMutex
	// logger is the framework logger. It defaults to the non-logging None.
	logger Logger = None
)

// LevelLogger is a leveled logger.
type LevelLogger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})

	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
}

// Fields is a collection of fields that can be passed to Logger.WithFields.
type Fields map[string]interface{}

// Logger is a LevelLogger with structured field logging capabilities.
type Logger interface {
	LevelLogger

	WithField(key string, value interface{}) Logger
	WithFields(Fields) Logger
	WithError(error) Logger
}

// Set sets the framework logger. Passing nil resets it to None.
func Set(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = None
	}
	logger = l
}

// Get returns the framework logger.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// WithField returns the framework logger with an additional field.
func WithField(key string, value interface{}) Logger { return Get().WithField(key, value) }

// WithFields returns the framework logger with additional fields.
func WithFields(fs Fields) Logger { return Get().WithFields(fs) }

// WithError returns the framework logger with an error field.
func WithError(err error) Logger { return Get().WithError(err) }

func Tracef(format string, args ...interface{}) { Get().Tracef(format, args...) }
func Debugf(format string, args ...interface{}) { Get().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Get().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Get().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Get().Errorf(format, args...) }
func Panicf(format string, args ...interface{}) { Get().Panicf(format, args...) }

func Trace(args ...interface{}) { Get().Trace(args...) }
func Debug(args ...interface{}) { Get().Debug(args...) }
func Info(args ...interface{})  { Get().Info(args...) }
func Warn(args ...interface{})  { Get().Warn(args...) }
func Error(args ...interface{}) { Get().Error(args...) }
func Panic(args ...interface{}) { Get().Panic(args...) }
