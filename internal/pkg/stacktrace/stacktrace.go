// Package stacktrace trims goroutine dumps down to this module's frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns the "internal/...go:line" locations found in a debug.Stack dump.
func InternalPaths(stack []byte) []string {
	var out []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)

		at := strings.Index(line, ".go:")
		if at < 0 {
			continue
		}
		if sp := strings.IndexByte(line[at:], ' '); sp >= 0 {
			line = line[:at+sp]
		}

		if idx := strings.Index(line, marker); idx >= 0 {
			out = append(out, line[idx+1:])
		}
	}
	return out
}
