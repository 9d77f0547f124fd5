// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// ErrInvalidPayload is returned when a request body can be decoded neither
// as JSON nor as a form.
var ErrInvalidPayload = errors.New("invalid request payload")
