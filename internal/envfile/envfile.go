// Package envfile reads and writes the stack's .env file.
//
// The file is the single source of truth for generated credentials and per-app
// ports, shared between docker compose and the provisioning steps. Parsing
// follows shell conventions: values may be single- or double-quoted, and an
// unquoted value ends at the first " #" comment marker.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Store is a handle to one .env file. Methods re-read the file on every call;
// the wizard's flows are strictly sequential, so there is no cache to go stale.
type Store struct {
	path string
}

// New returns a Store for the .env file at path. The file may not exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Dir returns the directory containing the .env file.
func (s *Store) Dir() string {
	return filepath.Dir(s.path)
}

var keyLinePattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=`)

func keyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^\s*%s\s*=`, regexp.QuoteMeta(key)))
}

// Get returns the parsed value of key, with quotes stripped and trailing
// comments removed. A missing key or file yields "".
func (s *Store) Get(key string) (string, error) {
	literal, err := s.GetLiteral(key)
	if err != nil || literal == "" {
		return "", err
	}
	return parseValue(literal), nil
}

// parseValue extracts the value from the raw right-hand side of a definition.
// Quoted values run to the last matching quote. Unquoted values end at " #".
func parseValue(literal string) string {
	val := strings.TrimLeft(literal, " \t")

	if len(val) >= 2 {
		quote := val[0]
		if quote == '"' || quote == '\'' {
			if lastIdx := strings.LastIndexByte(val, quote); lastIdx > 0 {
				return val[1:lastIdx]
			}
		}
	}

	if idx := strings.Index(val, " #"); idx != -1 {
		return strings.TrimRight(val[:idx], " \t")
	}
	return strings.TrimRight(val, " \t")
}

// GetLiteral returns the raw text after the first '=' of the key's line,
// quotes and comments included.
func (s *Store) GetLiteral(key string) (string, error) {
	line, err := s.Line(key)
	if err != nil || line == "" {
		return "", err
	}
	if _, rhs, found := strings.Cut(line, "="); found {
		return rhs, nil
	}
	return "", nil
}

// Line returns the full line defining key, or "" when absent.
func (s *Store) Line(key string) (string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	re := keyPattern(key)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if re.MatchString(scanner.Text()) {
			return scanner.Text(), nil
		}
	}
	return "", scanner.Err()
}

// Has reports whether key is defined.
func (s *Store) Has(key string) (bool, error) {
	line, err := s.Line(key)
	return line != "", err
}

// Set writes key with a single-quoted value, escaping embedded single quotes
// the shell way. An existing definition is replaced in place and duplicate
// definitions are dropped.
func (s *Store) Set(key, value string) error {
	escaped := strings.ReplaceAll(value, "'", `'"'"'`)
	return s.setLine(key, fmt.Sprintf("%s='%s'", key, escaped))
}

// SetLiteral writes key with the raw value, no quoting applied.
func (s *Store) SetLiteral(key, raw string) error {
	return s.setLine(key, fmt.Sprintf("%s=%s", key, raw))
}

// SetDefault writes key only when it is not already defined. It reports
// whether a write happened.
func (s *Store) SetDefault(key, value string) (bool, error) {
	has, err := s.Has(key)
	if err != nil || has {
		return false, err
	}
	return true, s.Set(key, value)
}

func (s *Store) setLine(key, newLine string) error {
	lines, err := s.readLines()
	if err != nil {
		return err
	}

	re := keyPattern(key)
	out := make([]string, 0, len(lines)+1)
	found := false
	for _, line := range lines {
		if re.MatchString(line) {
			if !found {
				out = append(out, newLine)
				found = true
			}
			continue
		}
		out = append(out, line)
	}
	if !found {
		out = append(out, newLine)
	}
	return s.writeLines(out)
}

// Unset removes every definition of key.
func (s *Store) Unset(key string) error {
	lines, err := s.readLines()
	if err != nil {
		return err
	}

	re := keyPattern(key)
	out := make([]string, 0, len(lines))
	found := false
	for _, line := range lines {
		if re.MatchString(line) {
			found = true
			continue
		}
		out = append(out, line)
	}
	if !found {
		return nil
	}
	return s.writeLines(out)
}

// Keys returns all defined keys, sorted.
func (s *Store) Keys() ([]string, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, line := range lines {
		if m := keyLinePattern.FindStringSubmatch(line); m != nil {
			keys = append(keys, m[1])
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// MergeMissing copies definitions from src that are absent here, preserving
// their literal form. It returns the added lines.
func (s *Store) MergeMissing(src *Store) ([]string, error) {
	srcLines, err := src.readLines()
	if err != nil {
		return nil, err
	}
	var added []string
	for _, line := range srcLines {
		m := keyLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		has, err := s.Has(m[1])
		if err != nil {
			return added, err
		}
		if has {
			continue
		}
		literal, err := src.GetLiteral(m[1])
		if err != nil {
			return added, err
		}
		if err := s.SetLiteral(m[1], literal); err != nil {
			return added, err
		}
		added = append(added, line)
	}
	return added, nil
}

func (s *Store) readLines() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// writeLines rewrites the file. Mode 0600: the file holds credentials.
func (s *Store) writeLines(lines []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
