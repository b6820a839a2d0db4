package ui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 10); got != "" {
		t.Errorf("Sparkline(nil) = %q, want empty", got)
	}

	got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	if got != "▁▂▃▄▅▆▇█" {
		t.Errorf("Sparkline ramp = %q", got)
	}

	values := make([]float64, 100)
	values[57] = 1
	got = Sparkline(values, 10)
	if n := utf8.RuneCountInString(got); n != 10 {
		t.Errorf("Sparkline width = %d, want 10", n)
	}
	if !strings.ContainsRune(got, '█') {
		t.Errorf("narrow peak lost: %q", got)
	}
}

func TestTaskModelProgress(t *testing.T) {
	m := NewTaskModel("Scanning files").(*taskModel)

	m.Update(Progress{Done: 1, Total: 4, Item: "a.gse", Detail: "3 traces"})
	m.Update(Progress{Done: 2, Total: 4, Item: "b.gse", Failed: true})

	if got := m.Percent(); got != 0.5 {
		t.Errorf("Percent = %v, want 0.5", got)
	}
	view := m.View()
	for _, want := range []string{"Scanning files", "2 of 4", "1 with problems", "b.gse"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTaskModelComplete(t *testing.T) {
	m := NewTaskModel("Reading").(*taskModel)

	_, cmd := m.Update(Complete{Lines: [][2]string{{"Series", "3"}}, Duration: 2 * time.Second})
	if cmd == nil {
		t.Fatal("expected a quit timer after completion")
	}
	view := m.View()
	if !strings.Contains(view, "Reading complete") || !strings.Contains(view, "Series:") {
		t.Errorf("completion view = %q", view)
	}

	_, cmd = m.Update(quitTimerMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("/very/long/path/file.gse", 9); got != "…file.gse" {
		t.Errorf("truncate = %q", got)
	}
}
