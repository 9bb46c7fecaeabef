// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdftext

import "log/slog"

// Logger receives non-fatal diagnostics: a page with no content stream,
// a font name that does not resolve, a page cut short by the recursion
// limit, and a page skipped after an error. Malformed operators,
// unresolved XObjects and unknown ExtGState keys are skipped without a
// log entry. Documents returned by Open, OpenEncrypted and OpenFile use
// NopLogger until SetLogger is called.
//
// No repository in the retrieval pack imports a third-party structured
// logger, so this module defines its own minimal interface rather than
// importing one — callers who want zap/zerolog/logrus output wrap it
// themselves, the way a library (as opposed to an application) should.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// NopLogger discards everything. It is the default.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

func (s SlogLogger) Debug(msg string, kv ...any) { s.L.Debug(msg, kv...) }
func (s SlogLogger) Info(msg string, kv ...any)  { s.L.Info(msg, kv...) }
func (s SlogLogger) Warn(msg string, kv ...any)  { s.L.Warn(msg, kv...) }
func (s SlogLogger) Error(msg string, kv ...any) { s.L.Error(msg, kv...) }

// placementLoggerAdapter narrows Logger to placement.Logger without
// making the placement package depend on this one (which would create
// an import cycle, since this package depends on placement).
type placementLoggerAdapter struct {
	l Logger
}

func (a placementLoggerAdapter) Debug(msg string, kv ...any) { a.l.Debug(msg, kv...) }
