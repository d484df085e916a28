/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package log provides a logging abstraction decoupled from any single
// logging library, the way pdfcpu's own pkg/log does — only the default
// implementation differs: zap instead of stdlib log, since this system's
// HTTP surface is already zap-based (internal/zap4echo).
package log

import (
	"go.uber.org/zap"
)

// Logger defines an interface for logging messages.
type Logger interface {
	Printf(format string, args ...interface{})
	Println(args ...interface{})
	Fatalf(format string, args ...interface{})
	Fatalln(args ...interface{})
}

type logger struct {
	log Logger
}

// This system's two defined loggers.
var (
	Debug = &logger{}
	Info  = &logger{}
)

// SetDebugLogger sets the debug logger.
func SetDebugLogger(l Logger) { Debug.log = l }

// SetInfoLogger sets the info logger.
func SetInfoLogger(l Logger) { Info.log = l }

// SetDefaultLoggers wires both loggers to a zap.SugaredLogger adapter.
func SetDefaultLoggers() {
	prod, _ := zap.NewProduction()
	SetInfoLogger(zapAdapter{prod.Sugar()})

	dev, _ := zap.NewDevelopment()
	SetDebugLogger(zapAdapter{dev.Sugar()})
}

// DisableLoggers turns off all logging.
func DisableLoggers() {
	SetDebugLogger(nil)
	SetInfoLogger(nil)
}

func (l *logger) Printf(format string, args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Printf(format, args...)
}

func (l *logger) Println(args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Println(args...)
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Fatalf(format, args...)
}

func (l *logger) Fatalln(args ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Fatalln(args...)
}

// zapAdapter satisfies Logger using a zap.SugaredLogger.
type zapAdapter struct {
	s *zap.SugaredLogger
}

func (z zapAdapter) Printf(format string, args ...interface{}) { z.s.Infof(format, args...) }
func (z zapAdapter) Println(args ...interface{})               { z.s.Info(args...) }
func (z zapAdapter) Fatalf(format string, args ...interface{}) { z.s.Fatalf(format, args...) }
func (z zapAdapter) Fatalln(args ...interface{})                { z.s.Fatal(args...) }
