// Package project holds the profile the collaborator builds for the user's
// codebase and the checks applied to intake input before it is sent.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/uniq/internal/errors"
)

// Framework is a detected library or framework.
type Framework struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Category string `json:"category"`
}

// IntegrationPoint is a location the collaborator suggests for new code.
type IntegrationPoint struct {
	FilePath          string `json:"file_path"`
	Description       string `json:"description"`
	SuggestedApproach string `json:"suggested_approach"`
	Complexity        string `json:"complexity"`
}

// Profile is the analyze-project response.
type Profile struct {
	Path              string             `json:"path"`
	UserRequest       string             `json:"user_request"`
	Summary           string             `json:"summary"`
	Languages         []string           `json:"languages"`
	Frameworks        []Framework        `json:"frameworks"`
	FileCount         int                `json:"file_count"`
	KeyFiles          []string           `json:"key_files"`
	IntegrationPoints []IntegrationPoint `json:"integration_points"`
	FileTree          string             `json:"file_tree"`
}

// Headline is a one-line description for the status bar.
func (p *Profile) Headline() string {
	langs := "unknown language"
	if len(p.Languages) > 0 {
		langs = strings.Join(p.Languages, ", ")
	}
	return fmt.Sprintf("%s (%s, %d files)", filepath.Base(p.Path), langs, p.FileCount)
}

// Intake is the text the user typed on the first screen.
type Intake struct {
	Path        string
	Description string
}

// Normalize expands a leading ~ and makes the path absolute.
func (in Intake) Normalize() (Intake, error) {
	path := strings.TrimSpace(in.Path)
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return in, errors.NewUniqError(errors.CategoryIo, "cannot resolve home directory", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return in, errors.NewUniqError(errors.CategoryIo, "cannot resolve project path", err)
		}
		path = abs
	}
	return Intake{Path: path, Description: strings.TrimSpace(in.Description)}, nil
}

// Validate checks that the path names an existing directory and that a
// description was given. It returns the normalized intake on success.
func (in Intake) Validate() (Intake, error) {
	norm, err := in.Normalize()
	if err != nil {
		return in, err
	}
	if norm.Path == "" {
		return in, errors.NewUniqError(errors.CategoryProjectAnalysis, "project path is required", errors.ErrInvalidInput)
	}
	info, err := os.Stat(norm.Path)
	if err != nil {
		return in, errors.NewUniqError(errors.CategoryProjectAnalysis, "project path does not exist", err).WithUnit(norm.Path)
	}
	if !info.IsDir() {
		return in, errors.NewUniqError(errors.CategoryProjectAnalysis, "project path is not a directory", errors.ErrInvalidInput).WithUnit(norm.Path)
	}
	if norm.Description == "" {
		return in, errors.NewUniqError(errors.CategoryProjectAnalysis, "describe what you want to build", errors.ErrInvalidInput)
	}
	return norm, nil
}
