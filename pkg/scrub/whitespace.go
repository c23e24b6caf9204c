package scrub

import "strings"

// normalizeWhitespace tidies spacing line by line: runs of horizontal
// whitespace (including NBSP and other Unicode spaces) collapse to a
// single space, each line is trimmed, runs of blank lines collapse to one
// blank line, and leading and trailing blank lines are dropped.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if line == "" {
			blank++
			continue
		}
		if len(out) > 0 && blank > 0 {
			out = append(out, "")
		}
		blank = 0
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
