// Package roster loads the line-oriented member, term and group lists.
package roster

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads one entry per line, trimming whitespace and skipping blank
// lines and #-comments. A missing file is not an error: the game degrades
// to an empty list rather than refusing to start.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var entries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return entries, nil
}
