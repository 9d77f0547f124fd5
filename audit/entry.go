// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package audit

import (
	"fmt"
	"net/http"
	"time"
)

const lineFormat = "%s (%s, time: %s, user id: %s, db queries: %s): %s"

// Placeholders for values unknown when the line is written.
const (
	UnknownTime = "unknown"
	Unresolved  = "-"
)

// DataPrefix starts every captured body summary.
const DataPrefix = "DATA: "

// Entry is the audit record of one request. It lives for a single
// Start/Finish pair and is never shared between requests.
type Entry struct {
	Path       string
	Method     string
	Query      string
	RemoteAddr string
	Header     http.Header

	Time      string
	UserID    string
	DBQueries string
	Body      string

	start time.Time
}

func newEntry(r *http.Request) *Entry {
	return &Entry{
		Path:       r.URL.Path,
		Method:     r.Method,
		Query:      r.URL.RawQuery,
		RemoteAddr: r.RemoteAddr,
		Header:     r.Header.Clone(),
		Time:       UnknownTime,
		UserID:     Unresolved,
		DBQueries:  Unresolved,
	}
}

// Line formats e as
//
//	<path> (<METHOD>, time: <seconds>, user id: <id>, db queries: <n>): <body>
func (e *Entry) Line() string {
	return fmt.Sprintf(lineFormat, e.Path, e.Method, e.Time, e.UserID, e.DBQueries, e.Body)
}
