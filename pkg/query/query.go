// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-valued parameters shared by the CLI flags and the ops API.
package query

import "strings"

// StringSlice splits a comma separated value into trimmed entries.
// Empty entries and repeats are dropped; first occurrences keep their order.
func StringSlice(val string) []string {
	fields := strings.FieldsFunc(val, func(r rune) bool { return r == ',' })

	var out []string
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		clean := strings.TrimSpace(field)
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	return out
}
