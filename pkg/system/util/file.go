package util

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrEmpty indicates that a sysfs attribute was present but empty.
var ErrEmpty = errors.New("util: empty file")

// ReadTrimmed returns the content of path without surrounding whitespace.
func ReadTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return s, nil
}

// ReadInt parses the trimmed content of path as a base 10 integer.
func ReadInt(path string) (int64, error) {
	s, err := ReadTrimmed(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// WriteString writes s to an existing file. sysfs attributes cannot be
// created, so the file is never created or truncated beyond what the
// kernel does on write.
func WriteString(path, s string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(s); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// MaxListID bounds the ids ParseList accepts.
const MaxListID = 1 << 20

// ParseList parses a kernel cpu list such as "0-3,8,10-11" into sorted,
// de-duplicated ids. Ids above MaxListID are rejected.
func ParseList(s string) ([]int, error) {
	set := map[int]struct{}{}
	for _, part := range strings.Split(strings.TrimSpace(s), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("parse list %q: %w", s, err)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("parse list %q: %w", s, err)
			}
			if end < start {
				return nil, fmt.Errorf("parse list %q: descending range %s", s, part)
			}
		}
		if end > MaxListID {
			return nil, fmt.Errorf("parse list %q: id %d above %d", s, end, MaxListID)
		}
		for i := start; i <= end; i++ {
			set[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out, nil
}
