package util_test

import (
	"testing"
	"time"

	"github.com/modelgarden/nodeup/internal/util"
)

func TestParseMemory(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"2G", 2048},
		{"512M", 512},
		{"1024K", 1},
		{"1Gi", 1024},
	}
	for _, tc := range cases {
		got, err := util.ParseMemory(tc.in)
		if err != nil {
			t.Errorf("ParseMemory(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMemory(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if _, err := util.ParseMemory("2X"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KiB"},
		{11010048, "10.50 MiB"},
		{3 << 30, "3.00 GiB"},
	}
	for _, tc := range cases {
		if got := util.FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{71 * time.Second, "01:11"},
		{90 * time.Minute, "90:00"},
	}
	for _, tc := range cases {
		if got := util.FormatClock(tc.in); got != tc.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLineWriter(t *testing.T) {
	var lines []string
	w := util.NewLineWriter(func(s string) { lines = append(lines, s) })

	w.Write([]byte("Receiving objects:  10%\rReceiving objects:  "))
	w.Write([]byte("45%\rdone.\n"))
	w.Write([]byte("trailing"))
	w.Flush()

	want := []string{
		"Receiving objects:  10%",
		"Receiving objects:  45%",
		"done.",
		"trailing",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
