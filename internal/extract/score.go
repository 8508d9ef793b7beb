/*
PURPOSE:
  Scores a raw answer against the expected substrings of a suite.

IMPLEMENTATION RULES:
  - Literal, case-sensitive match against the raw text, not the entities.

USAGE:
  n := extract.ScoreSubstrings(raw, suite.TestCases)
*/

package extract

import "strings"

// ScoreSubstrings counts how many expected cases appear verbatim in raw.
// Matching is literal and case-sensitive; duplicate cases count once each.
func ScoreSubstrings(raw string, cases []string) int {
	n := 0
	for _, c := range cases {
		if strings.Contains(raw, c) {
			n++
		}
	}
	return n
}
