package ui

import (
	"reflect"
	"testing"
	"time"

	"github.com/five82/leaddesk/internal/crm"
)

func TestParseFilterValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"Qualified", "Qualified"},
		{" 1500000 ", 1500000.0},
		{"2.5", 2.5},
		{"Baner, Wakad,,Aundh", []string{"Baner", "Wakad", "Aundh"}},
		{"12b", "12b"},
	}
	for _, tt := range tests {
		if got := parseFilterValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("parseFilterValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestBuildAgenda(t *testing.T) {
	start := time.Date(2026, 3, 9, 15, 30, 0, 0, time.UTC)
	todos := []crm.Todo{
		{ID: 1, DateTime: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)},
		{ID: 2, DateTime: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		{ID: 3, DateTime: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)},
		{ID: 4, DateTime: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)},
		{ID: 5, DateTime: time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC)},
	}

	days := buildAgenda(todos, start, 7)
	if len(days) != 7 {
		t.Fatalf("days = %d, want 7", len(days))
	}
	if !days[0].date.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first day = %v, want midnight of the start date", days[0].date)
	}
	if len(days[0].todos) != 1 || days[0].todos[0].ID != 3 {
		t.Fatalf("day 0 = %+v, want todo 3", days[0].todos)
	}
	if len(days[1].todos) != 2 || days[1].todos[0].ID != 2 || days[1].todos[1].ID != 1 {
		t.Fatalf("day 1 = %+v, want todos 2 then 1", days[1].todos)
	}
	total := 0
	for _, d := range days {
		total += len(d.todos)
	}
	if total != 3 {
		t.Fatalf("agenda holds %d todos, want 3 (outside the window dropped)", total)
	}
}

func TestFormatBudget(t *testing.T) {
	tests := map[float64]string{
		0:          "-",
		950:        "950",
		85000:      "85K",
		1240000:    "1.2M",
		3000000:    "3M",
		2100000000: "2.1B",
	}
	for in, want := range tests {
		if got := formatBudget(in); got != want {
			t.Fatalf("formatBudget(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatWhen(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "-"},
		{time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC), "Today 14:05"},
		{time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), "Tomorrow 08:00"},
		{time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC), "Yesterday 23:00"},
		{time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC), "Fri 10:00"},
		{time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), "1 May 10:00"},
		{time.Date(2027, 1, 2, 10, 0, 0, 0, time.UTC), "2 Jan 2027"},
	}
	for _, tt := range tests {
		if got := formatWhen(tt.at, now); got != tt.want {
			t.Fatalf("formatWhen(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestHumanizeAge(t *testing.T) {
	tests := map[time.Duration]string{
		-time.Second:     "0s",
		45 * time.Second: "45s",
		12 * time.Minute: "12m",
		3 * time.Hour:    "3h",
		50 * time.Hour:   "2d",
	}
	for in, want := range tests {
		if got := humanizeAge(in); got != want {
			t.Fatalf("humanizeAge(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.perPage); got != tt.want {
			t.Fatalf("totalPages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestNextFieldWraps(t *testing.T) {
	fields := []string{"a", "b", "c"}
	if got := nextField(fields, "b"); got != "c" {
		t.Fatalf("nextField(b) = %q, want c", got)
	}
	if got := nextField(fields, "c"); got != "a" {
		t.Fatalf("nextField(c) = %q, want a", got)
	}
	if got := nextField(fields, ""); got != "a" {
		t.Fatalf("nextField(empty) = %q, want a", got)
	}
}

func TestColumnWidthsFillTheLine(t *testing.T) {
	cols := []column{
		{title: "Name", width: 10, flex: true},
		{title: "Phone", width: 12},
		{title: "Notes", width: 10, flex: true},
	}
	widths := columnWidths(cols, 80)
	sum := len(widths) - 1
	for _, w := range widths {
		sum += w
	}
	if sum > 80 {
		t.Fatalf("columns use %d cells, want at most 80", sum)
	}
	if widths[1] != 12 {
		t.Fatalf("fixed column width = %d, want 12", widths[1])
	}
	if widths[0] <= 10 || widths[2] <= 10 {
		t.Fatalf("flex columns did not grow: %v", widths)
	}
}

func TestParseView(t *testing.T) {
	if got := parseView(" Calendar "); got != ViewCalendar {
		t.Fatalf("parseView(Calendar) = %v, want calendar", got)
	}
	if got := parseView("login"); got != ViewLeads {
		t.Fatalf("parseView(login) = %v, want leads", got)
	}
}
