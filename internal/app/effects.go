package app

import (
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/fanout"
	"github.com/Iron-Ham/uniq/internal/project"
	"github.com/Iron-Ham/uniq/internal/research"
)

// Effects starts background work. Every method returns at once; results
// come back as actions on the bus.
type Effects interface {
	Analyze(path, description string)
	Search(queries []string, p fanout.SearchParams)
	Extract(papers []research.Paper, projectSummary, userRequest string)
	Generate(units []fanout.GenerateUnit, profile project.Profile)
	Benchmark(units []fanout.BenchUnit, p fanout.BenchParams)
	Merge(job fanout.MergeJob)
}

var _ Effects = (*fanout.Controller)(nil)

// Connector builds the effects for a healthy collaborator.
type Connector func(h collaborator.Handle) Effects
