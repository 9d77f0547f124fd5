// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package auth implements the "Token <key>" authentication scheme carried in
// a configurable request header.
//
// [TokenAuthentication] only extracts and shape-checks the credential; the
// key itself is resolved by a [CredentialResolver] (usually the token store).
// [Middleware] runs a chain of [Authenticator]s and attaches the resulting
// user to the request context:
//
//	tokens := auth.NewTokenAuthentication(resolver,
//		auth.WithHeaderName("HTTP_API_AUTHORIZATION"),
//		auth.WithFallback(cfg.App.IsDevelopment() || cfg.App.IsStaging()),
//	)
//	r.Use(auth.Middleware(tokens))
//	r.With(auth.RequireUser).Get("/api/me", me)
package auth
