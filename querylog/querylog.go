// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package querylog counts the database statements executed on behalf of a
// single request.
//
// A [Recorder] is installed into the request context by the audit middleware;
// the store layer reports every statement it runs through [Record]. Code that
// runs without a recorder in its context is unaffected.
package querylog

import (
	"context"
	"sync/atomic"
)

type ctxKey struct{}

// Recorder accumulates the number of executed statements. It is safe for use
// by a handler that fans out to several goroutines.
type Recorder struct {
	count atomic.Int64
	last  atomic.Value // string
}

// WithRecorder returns a child context carrying a fresh Recorder.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	rec := new(Recorder)
	return context.WithValue(ctx, ctxKey{}, rec), rec
}

// FromContext returns the Recorder installed in ctx, if any.
func FromContext(ctx context.Context) (*Recorder, bool) {
	rec, ok := ctx.Value(ctxKey{}).(*Recorder)
	return rec, ok && rec != nil
}

// Record counts query against the Recorder in ctx. Without a recorder it is
// a no-op.
func Record(ctx context.Context, query string) {
	if rec, ok := FromContext(ctx); ok {
		rec.Record(query)
	}
}

// Count reports the number of statements recorded in ctx. ok is false when
// ctx carries no Recorder.
func Count(ctx context.Context) (n int, ok bool) {
	rec, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return rec.Count(), true
}

// Record counts one executed statement.
func (r *Recorder) Record(query string) {
	r.count.Add(1)
	r.last.Store(query)
}

// Count returns the number of recorded statements.
func (r *Recorder) Count() int {
	return int(r.count.Load())
}

// Last returns the most recently recorded statement, or "".
func (r *Recorder) Last() string {
	s, _ := r.last.Load().(string)
	return s
}
