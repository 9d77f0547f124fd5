// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package audit writes one log line per API request with its timing, the
// acting user, the number of database statements it ran and a summary of
// its payload:
//
//	/api/widgets (GET, time: 0.0021, user id: 7, db queries: 2): DATA: {'color': 'red'}
//
// Only paths under the configured prefix are audited. The entry is built by
// [Auditor.Start] and emitted by [Auditor.Finish]; [Auditor.Middleware]
// wires both around a handler.
package audit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-rest-common/auth"
	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/models"
	"github.com/MKhiriev/go-rest-common/querylog"
)

// Defaults for [Config].
const (
	DefaultLoggerName = "api"
	DefaultAPIPrefix  = "/api/"
)

const maxMultipartMemory = 32 << 20

// MaxBodySummary bounds the raw body captured for the audit line. The rest
// of the body still reaches the handler.
const MaxBodySummary = 16 << 10

// Config configures an [Auditor].
type Config struct {
	// LoggerName is the name audit lines are logged under.
	LoggerName string
	// APIPrefix selects the audited paths.
	APIPrefix string
}

// TokenLookup resolves a token key to its owner. It is consulted when no
// authenticated user was attached to the request.
type TokenLookup interface {
	FindUserByToken(ctx context.Context, key string) (models.User, error)
}

// Auditor emits request audit lines.
type Auditor struct {
	prefix string
	name   string
	tokens TokenLookup
	logger *logger.Logger
	now    func() time.Time
}

// New builds an Auditor logging through log. tokens may be nil.
func New(cfg Config, tokens TokenLookup, log zerolog.Logger) *Auditor {
	if cfg.LoggerName == "" {
		cfg.LoggerName = DefaultLoggerName
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = DefaultAPIPrefix
	}

	return &Auditor{
		prefix: cfg.APIPrefix,
		name:   cfg.LoggerName,
		tokens: tokens,
		logger: (&logger.Logger{Logger: log}).Named(cfg.LoggerName),
		now:    time.Now,
	}
}

// IsAPIRequest reports whether r is under the audited prefix.
func (a *Auditor) IsAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, a.prefix)
}

// Start builds the entry for r. It returns nil for requests outside the
// prefix. Otherwise the returned request carries a query recorder and a user
// slot and must be the one passed downstream and to [Auditor.Finish].
func (a *Auditor) Start(r *http.Request) (*Entry, *http.Request) {
	if !a.IsAPIRequest(r) {
		return nil, r
	}

	e := newEntry(r)

	ctx, _ := querylog.WithRecorder(r.Context())
	r = r.WithContext(auth.WithUserSlot(ctx))

	e.Body = a.captureBody(r)
	e.start = a.now()

	return e, r
}

// Finish completes e and logs it. status and size describe the response.
func (a *Auditor) Finish(r *http.Request, e *Entry, status, size int) {
	if e == nil || !a.IsAPIRequest(r) {
		return
	}

	if !e.start.IsZero() {
		e.Time = formatSeconds(a.now().Sub(e.start))
	}

	// the token lookup below is itself a query, so count afterwards
	if id, ok := a.userID(r); ok {
		e.UserID = strconv.FormatInt(id, 10)
	}
	if n, ok := querylog.Count(r.Context()); ok {
		e.DBQueries = strconv.Itoa(n)
	}

	if status == 0 {
		status = http.StatusOK
	}

	a.requestLogger(r).Info().
		Str("method", e.Method).
		Str("path", e.Path).
		Int("status", status).
		Int("size", size).
		Str("remote_addr", e.RemoteAddr).
		Msg(e.Line())
}

// Middleware audits every request passing through next.
func (a *Auditor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e, r := a.Start(r)
		if e == nil {
			next.ServeHTTP(w, r)
			return
		}

		rw := &responseWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			status := rw.status
			if rec != nil {
				status = http.StatusInternalServerError
			}
			a.Finish(r, e, status, rw.size)
			if rec != nil {
				panic(rec)
			}
		}()

		next.ServeHTTP(rw, r)
	})
}

// requestLogger prefers the logger attached to the request so audit lines
// carry its fields, such as the trace id.
func (a *Auditor) requestLogger(r *http.Request) *logger.Logger {
	l := zerolog.Ctx(r.Context())
	if l == zerolog.DefaultContextLogger || l.GetLevel() == zerolog.Disabled {
		return a.logger
	}
	return (&logger.Logger{Logger: *l}).Named(a.name)
}

func (a *Auditor) captureBody(r *http.Request) string {
	switch r.Method {
	case http.MethodGet:
		return DataPrefix + renderParams(r.URL.Query())
	case http.MethodPost:
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			logger.FromRequest(r).Debug().Err(err).Msg("error parsing form")
		}
		return DataPrefix + renderParams(r.PostForm)
	case http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return DataPrefix + string(readBody(r))
	default:
		return ""
	}
}

type replayBody struct {
	io.Reader
	io.Closer
}

// readBody returns up to MaxBodySummary bytes of the body and puts them back
// in front of the unread rest for the next reader.
func readBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	orig := r.Body
	head, err := io.ReadAll(io.LimitReader(orig, MaxBodySummary))
	if err != nil {
		logger.FromRequest(r).Debug().Err(err).Msg("error reading body")
	}
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(head), orig), Closer: orig}
	return head
}

// userID resolves the acting user: the authenticated user if one was
// attached, else the owner of the key in "Authorization: <scheme> <key>".
func (a *Auditor) userID(r *http.Request) (id int64, ok bool) {
	if u, found := auth.UserFromContext(r.Context()); found {
		return u.UserID, true
	}

	if a.tokens == nil {
		return 0, false
	}

	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) < 2 {
		return 0, false
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.FromRequest(r).Error().Any("panic", rec).Msg("token lookup panicked")
			id, ok = 0, false
		}
	}()

	u, err := a.tokens.FindUserByToken(r.Context(), parts[1])
	if err != nil {
		return 0, false
	}
	return u.UserID, true
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
