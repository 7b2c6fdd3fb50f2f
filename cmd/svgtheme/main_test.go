package main

import (
	"path/filepath"
	"testing"

	"github.com/tdewolff/test"
)

func TestNewTask(t *testing.T) {
	tests := []struct {
		input, output string
		dirDst        bool
		dst           string
	}{
		// in-place rewrite
		{"a.svg", "", false, "a.svg"},
		{"dir/a.svg", "", false, "dir/a.svg"},

		// explicit output file
		{"a.svg", "out.svg", false, "out.svg"},
		{"a.svg", "./out.svg", false, "out.svg"},

		// output directory keeps the base name
		{"a.svg", "out", true, filepath.Join("out", "a.svg")},
		{"dir/a.svg", "out", true, filepath.Join("out", "a.svg")},
	}
	for _, tt := range tests {
		t.Run(tt.input+" => "+tt.output, func(t *testing.T) {
			task, err := NewTask(tt.input, tt.output, tt.dirDst)
			test.Error(t, err)
			test.String(t, task.src, tt.input)
			test.String(t, task.dst, tt.dst)
		})
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	test.That(t, IsDir(dir), "existing directory")
	test.That(t, IsDir("missing"+string(filepath.Separator)), "trailing separator")
	test.That(t, !IsDir(filepath.Join(dir, "missing")), "missing path")
}
