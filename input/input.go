// Package input loads the domain list for a batch run.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadDomains loads domain names from the file at path, one per line.
// "-" reads from stdin. Blank lines and lines starting with "#" are
// skipped; surviving lines are trimmed, lowercased, and stripped of any
// trailing dot.
func ReadDomains(path string) ([]string, error) {
	if path == "-" {
		return readDomains(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening domain list: %w", err)
	}
	defer file.Close()

	domains, err := readDomains(file)
	if err != nil {
		return nil, fmt.Errorf("reading domain list %s: %w", path, err)
	}
	return domains, nil
}

func readDomains(r io.Reader) ([]string, error) {
	var domains []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, strings.ToLower(strings.TrimSuffix(line, ".")))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return domains, nil
}
