// Package versions reads asset version manifests and stamps resource URLs
// with a version query parameter.
//
// A manifest is plain text, one entry per line:
//
//	# comment
//	images/hero.png 3
//	config/levels.json 12
//
// Blank lines and lines starting with '#' are ignored.
//
// Example:
//
//	table, err := versions.LoadFile("assets/versions.txt")
//	if err != nil {
//	    return err
//	}
//	u := table.Apply("https://cdn.example.com/images/hero.png", "images/hero.png")
//	// u = "https://cdn.example.com/images/hero.png?v=3"
package versions

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned by Parse for lines that are not
// "<relative-path> <integer-version>".
var ErrMalformedLine = errors.New("malformed versions line")

// Table maps a normalized relative path to its version.
type Table map[string]int

// Parse reads a versions manifest.
func Parse(r io.Reader) (Table, error) {
	table := make(Table)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrMalformedLine, line)
		}

		version, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: version %q is not an integer", lineNo, ErrMalformedLine, fields[1])
		}

		table[normalize(fields[0])] = version
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadFile reads a versions manifest from disk.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open versions file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Lookup returns the version recorded for path.
func (t Table) Lookup(path string) (int, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t[normalize(path)]
	return v, ok
}

// Apply appends v=<version> to rawURL when path has a recorded version.
// rawURL is returned unchanged otherwise.
func (t Table) Apply(rawURL, path string) string {
	v, ok := t.Lookup(path)
	if !ok {
		return rawURL
	}
	return AddQuery(rawURL, "v", strconv.Itoa(v))
}

// AddQuery appends key=value to the query string of rawURL, keeping any
// existing parameters.
func AddQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
	}

	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// normalize strips query, fragment and leading "./" or "/" so manifest
// entries match however the asset URL was written.
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimLeft(path, "/")
	return path
}
