package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Iron-Ham/uniq/internal/errors"
)

func TestIntakeValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      Intake
		wantErr bool
	}{
		{"valid", Intake{Path: dir, Description: "add caching"}, false},
		{"trims whitespace", Intake{Path: "  " + dir + " ", Description: " add caching "}, false},
		{"empty path", Intake{Path: "", Description: "x"}, true},
		{"missing path", Intake{Path: filepath.Join(dir, "nope"), Description: "x"}, true},
		{"file not dir", Intake{Path: file, Description: "x"}, true},
		{"blank description", Intake{Path: dir, Description: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if cat, ok := errors.CategoryOf(err); !ok || cat != errors.CategoryProjectAnalysis {
					t.Errorf("error category = %v, %v", cat, ok)
				}
				return
			}
			if got.Path != dir || got.Description != "add caching" {
				t.Errorf("Validate() = %+v", got)
			}
		})
	}
}

func TestNormalizeExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := Intake{Path: "~/proj"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got.Path != filepath.Join(home, "proj") {
		t.Errorf("Path = %q", got.Path)
	}
}

func TestHeadline(t *testing.T) {
	p := &Profile{Path: "/src/app", Languages: []string{"Go", "SQL"}, FileCount: 12}
	if got := p.Headline(); got != "app (Go, SQL, 12 files)" {
		t.Errorf("Headline() = %q", got)
	}

	empty := &Profile{Path: "/src/x"}
	if got := empty.Headline(); got != "x (unknown language, 0 files)" {
		t.Errorf("Headline() = %q", got)
	}
}
