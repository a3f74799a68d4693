// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid mints the UUIDv7 identifiers of runs, competitors, fix audits
// and request ids. Version 7 values sort by creation time, so the run history
// lists in start order without a separate sort key.
package uuid

import "github.com/google/uuid"

// New returns a UUIDv7 string. It panics only when the system entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
