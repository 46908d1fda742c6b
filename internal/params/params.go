// Package params parses the textual parameter report produced by the
// analyzer's listing command into structured records.
package params

import (
	"bufio"
	"strconv"
	"strings"
)

// MalformedRange is the values specification the analyzer emits when a
// plugin reports a numeric range it cannot read. Parameters carrying it are
// excluded from the catalog's usable set.
const MalformedRange = "NaN to NaN"

// Param is one parameter entry from a listing report. Index is the
// parameter's ordinal position as reported by the plugin and is stable
// across scans.
type Param struct {
	Index        int
	Name         string
	Values       string
	Default      string
	SupportsText bool
}

const (
	valuesPrefix  = "Values:"
	defaultPrefix = "Default:"
	textPrefix    = "Supports text values:"
)

// Parse converts a listing report into parameter records, in report order.
// Unrecognized lines are skipped so newer analyzer versions can add metadata
// without breaking older catalogs. An empty or unparseable report yields an
// empty slice, never an error.
func Parse(report string) []Param {
	var (
		out     []Param
		current *Param
	)

	flush := func() {
		if current != nil {
			out = append(out, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(report))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if index, name, ok := parseHeader(line); ok {
			flush()
			current = &Param{Index: index, Name: name}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, valuesPrefix):
			current.Values = strings.TrimSpace(line[len(valuesPrefix):])
		case strings.HasPrefix(line, defaultPrefix):
			current.Default = strings.TrimSpace(line[len(defaultPrefix):])
		case strings.HasPrefix(line, textPrefix):
			rest := strings.TrimSpace(line[len(textPrefix):])
			current.SupportsText = strings.Contains(strings.ToLower(rest), "true")
		}
	}
	flush()
	return out
}

// parseHeader matches "<integer>:<text>" where the integer is bare digits.
func parseHeader(line string) (int, string, bool) {
	head, rest, found := strings.Cut(line, ":")
	if !found {
		return 0, "", false
	}
	head = strings.TrimSpace(head)
	if head == "" {
		return 0, "", false
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return 0, "", false
		}
	}
	index, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", false
	}
	return index, strings.TrimSpace(rest), true
}
