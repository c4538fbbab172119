package source

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var bulletPattern = regexp.MustCompile(`^\s*(?:[-*•·+]|\d{1,4}[.)])\s+`)

// ReadLines returns one entry per input line with bullets stripped and
// surrounding whitespace trimmed. Blank lines are kept so line numbers stay
// aligned with the source.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		lines = append(lines, CleanLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}

// CleanLine strips a leading list bullet and surrounding whitespace.
func CleanLine(line string) string {
	line = bulletPattern.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}
