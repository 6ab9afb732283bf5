package trader

import (
	"fmt"
	"os"
	"strings"
)

// LoadWatchlist reads the pair symbols to evaluate, one per line. Blank lines
// are skipped so the file can be grouped by hand.
func LoadWatchlist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	var pairs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pairs = append(pairs, line)
	}
	return pairs, nil
}
