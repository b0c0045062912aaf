// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection parses the interactive paper selection syntax:
// "all", "none", or a comma-separated list of 1-based indices and
// inclusive ranges such as "1,3,5-7".
package selection

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Error reports the first token that could not be parsed or was out of range.
type Error struct {
	Token  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid selection %q: %s", e.Token, e.Reason)
}

// Parse returns the 1-based indices selected by expr over max items,
// sorted ascending without duplicates. "all" selects every item and "none"
// selects nothing, both case-insensitive. Whitespace around tokens is
// ignored and empty tokens are skipped, but an expression with no tokens at
// all is an error. Any invalid token fails the whole parse, as does a
// negative max.
func Parse(expr string, max int) ([]int, error) {
	if max < 0 {
		return nil, &Error{Token: expr, Reason: fmt.Sprintf("item count %d is negative", max)}
	}
	trimmed := strings.TrimSpace(expr)
	switch strings.ToLower(trimmed) {
	case "all":
		all := make([]int, max)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	case "none":
		return []int{}, nil
	}

	seen := make(map[int]bool)
	for _, raw := range strings.Split(trimmed, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		lo, hi, err := parseToken(token, max)
		if err != nil {
			return nil, err
		}
		for n := lo; n <= hi; n++ {
			seen[n] = true
		}
	}

	if len(seen) == 0 {
		return nil, &Error{Token: expr, Reason: "no indices given"}
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices, nil
}

func parseToken(token string, max int) (int, int, error) {
	startText, endText, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, 0, &Error{Token: token, Reason: "not a number"}
		}
		if n < 1 || n > max {
			return 0, 0, &Error{Token: token, Reason: fmt.Sprintf("must be between 1 and %d", max)}
		}
		return n, n, nil
	}

	lo, err := strconv.Atoi(strings.TrimSpace(startText))
	if err != nil {
		return 0, 0, &Error{Token: token, Reason: "range start is not a number"}
	}
	hi, err := strconv.Atoi(strings.TrimSpace(endText))
	if err != nil {
		return 0, 0, &Error{Token: token, Reason: "range end is not a number"}
	}
	if lo < 1 || hi > max || lo > hi {
		return 0, 0, &Error{Token: token, Reason: fmt.Sprintf("range must satisfy 1 <= start <= end <= %d", max)}
	}
	return lo, hi, nil
}
