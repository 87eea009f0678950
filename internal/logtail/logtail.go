package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	// Attrs holds the remaining fields, stringified.
	Attrs map[string]string
	// Raw is the original line; it is the only field set for non-JSON lines.
	Raw string
}

// Structured reports whether the line parsed as a JSON record.
func (e Entry) Structured() bool {
	return e.Level != "" || e.Message != "" || !e.Time.IsZero()
}

// AttrKeys returns the attribute keys in sorted order.
func (e Entry) AttrKeys() []string {
	return slices.Sorted(maps.Keys(e.Attrs))
}

// Parse decodes a slog JSON line. Lines that are not JSON objects come back
// as raw entries.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return entry
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return entry
	}

	for key, value := range fields {
		switch key {
		case "time":
			if s, ok := value.(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					entry.Time = t
				}
			}
		case "level":
			entry.Level = strings.ToUpper(stringify(value))
		case "msg":
			entry.Message = stringify(value)
		case "component":
			entry.Component = stringify(value)
		default:
			if entry.Attrs == nil {
				entry.Attrs = make(map[string]string)
			}
			entry.Attrs[key] = stringify(value)
		}
	}
	return entry
}

// Tail reads the last maxLines of path and parses them.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Filter keeps entries at or above minLevel whose text contains query,
// case-insensitively. Raw entries are kept regardless of level.
func Filter(entries []Entry, minLevel, query string) []Entry {
	minRank := levelRank(minLevel)
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Entry
	for _, e := range entries {
		if e.Structured() && levelRank(e.Level) < minRank {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Raw), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func levelRank(level string) int {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return 0
	case "WARN", "WARNING":
		return 2
	case "ERROR":
		return 3
	default:
		return 1
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
