// Package braille holds the Grade 1 English 6-dot patterns the hardware
// display renders. Dot order follows the standard cell numbering 1-6.
package braille

import "strings"

var patterns = map[string][6]int{
	"a": {1, 0, 0, 0, 0, 0},
	"b": {1, 1, 0, 0, 0, 0},
	"c": {1, 0, 0, 1, 0, 0},
	"d": {1, 0, 0, 1, 1, 0},
	"e": {1, 0, 0, 0, 1, 0},
	"f": {1, 1, 0, 1, 0, 0},
	"g": {1, 1, 0, 1, 1, 0},
	"h": {1, 1, 0, 0, 1, 0},
	"i": {0, 1, 0, 1, 0, 0},
	"j": {0, 1, 0, 1, 1, 0},
	"k": {1, 0, 1, 0, 0, 0},
	"l": {1, 1, 1, 0, 0, 0},
	"m": {1, 0, 1, 1, 0, 0},
	"n": {1, 0, 1, 1, 1, 0},
	"o": {1, 0, 1, 0, 1, 0},
	"p": {1, 1, 1, 1, 0, 0},
	"q": {1, 1, 1, 1, 1, 0},
	"r": {1, 1, 1, 0, 1, 0},
	"s": {0, 1, 1, 1, 0, 0},
	"t": {0, 1, 1, 1, 1, 0},
	"u": {1, 0, 1, 0, 0, 1},
	"v": {1, 1, 1, 0, 0, 1},
	"w": {0, 1, 0, 1, 1, 1},
	"x": {1, 0, 1, 1, 0, 1},
	"y": {1, 0, 1, 1, 1, 1},
	"z": {1, 0, 1, 0, 1, 1},
}

var alphabet = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
}

// Alphabet returns the letters in teaching order. Callers must not
// mutate the returned slice.
func Alphabet() []string {
	return alphabet
}

// PatternFor returns the 6-dot pattern for a letter, case-insensitively.
func PatternFor(letter string) ([6]int, bool) {
	p, ok := patterns[strings.ToLower(strings.TrimSpace(letter))]
	return p, ok
}
