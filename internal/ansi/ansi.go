// Package ansi provides ANSI escape codes for terminal output.
package ansi

import (
	"regexp"
	"strings"
)

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Yellow  = "\033[33m"
	Green   = "\033[32m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"
)

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// Wrap styles text with codes and resets afterwards. With no codes the
// text is returned unchanged.
func Wrap(text string, codes ...string) string {
	if len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + Reset
}

// Strip removes SGR sequences from s.
func Strip(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}
