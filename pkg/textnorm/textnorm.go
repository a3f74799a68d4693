// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm normalizes free text (video titles, descriptions, lexical patterns)
// before it is matched or compared.
//
// # Usage
//
// Patterns and the text they are matched against must go through the same
// [Normalize] call, otherwise a decomposed "é" in a title would never match a
// composed "é" in a pattern. Language detection works on [Tokens], which also
// strips accents so that "für" and "fur" vote the same way.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lower is safe for concurrent use; cases.Caser is not, so Normalize builds its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Normalize converts s to NFC, lowercases it, and collapses runs of whitespace
// into a single space.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC (composes accented chars: e + combining acute → é).
// 2. Lowercases with Unicode-aware rules.
// 3. Collapses whitespace and trims the ends.
func Normalize(s string) string {
	result := norm.NFC.String(s)
	result = lower(result)
	return strings.Join(strings.Fields(result), " ")
}

// Fold lowercases s and removes combining marks (accents).
func Fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)
	return lower(result)
}

// Tokens splits the folded form of s on every rune that is neither a letter nor a digit.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
