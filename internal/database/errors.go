// Fleetglass - Fleet Tracking and Delivery Pricing Backend
// Copyright 2026 Fleetglass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fleetglass/fleetglass

package database

import (
	"errors"
	"io"
	"strings"
)

// ErrVehicleNotFound is returned when a vehicle id does not exist in the
// registry. Callers use errors.Is to translate it to a 404.
var ErrVehicleNotFound = errors.New("vehicle not found")

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup operations in error paths where Close() errors
// are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// isTransactionConflict reports whether err is a DuckDB optimistic
// concurrency conflict, which is safe to retry.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "transaction conflict") ||
		strings.Contains(msg, "conflict on concurrent")
}
