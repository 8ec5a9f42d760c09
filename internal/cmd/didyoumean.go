package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestDistance is the largest edit distance still worth suggesting.
const maxSuggestDistance = 3

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[len(b)]
}

// closest returns the candidate nearest to input. An abbreviation that
// fuzzy-matches (like "ordrs" for "orders") wins; otherwise the candidate
// within maxSuggestDistance edits is chosen.
func closest(input string, candidates []string) string {
	input = strings.ToLower(input)
	if input == "" || len(candidates) == 0 {
		return ""
	}

	lower := make([]string, len(candidates))
	for i, c := range candidates {
		lower[i] = strings.ToLower(c)
	}
	if matches := fuzzy.Find(input, lower); len(matches) > 0 {
		return candidates[matches[0].Index]
	}

	best, bestDist := "", maxSuggestDistance+1
	for i, c := range lower {
		if d := levenshtein(input, c); d < bestDist {
			best, bestDist = candidates[i], d
		}
	}
	return best
}

// suggestCommand returns the closest command name, or "".
func suggestCommand(unknown string, commands []string) string {
	return closest(unknown, commands)
}

// suggestFlag returns the closest flag, compared without leading dashes.
func suggestFlag(unknown string, flagNames []string) string {
	stripped := strings.TrimLeft(unknown, "-")
	if stripped == "" {
		return ""
	}
	bare := make([]string, len(flagNames))
	for i, f := range flagNames {
		bare[i] = strings.TrimLeft(f, "-")
	}
	match := closest(stripped, bare)
	if match == "" {
		return ""
	}
	for i, b := range bare {
		if b == match {
			return flagNames[i]
		}
	}
	return ""
}
