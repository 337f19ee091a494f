package cycle

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/githubcli"
	"github.com/temirov/revcycle/internal/gitrepo"
)

// Operation coordinates a single cycle step.
type Operation interface {
	Name() string
	Execute(executionContext context.Context, environment *Environment, state *State) error
}

// Describer is implemented by operations that can explain their planned effect.
type Describer interface {
	Description() string
}

// Environment exposes shared dependencies for cycle operations.
type Environment struct {
	RunID             string
	RepositoryPath    string
	Colrev            *colrev.Client
	Installer         *colrev.Installer
	RepositoryManager *gitrepo.RepositoryManager
	GitHubClient      *githubcli.Client
	Output            io.Writer
	Logger            *zap.Logger
}

// State accumulates facts discovered while the cycle runs.
type State struct {
	RunID                string
	RepositoryPath       string
	RepositoryIdentifier string
	RemoteName           string
	BaseBranch           string
	BaseReference        string
	UpdateBranch         string
	Committed            bool
	CommitsAhead         int
	Pushed               bool
	PullRequestURL       string
}

// DescribeOperation returns the operation's description, falling back to its name.
func DescribeOperation(operation Operation) string {
	if operation == nil {
		return ""
	}
	if describer, describable := operation.(Describer); describable {
		return describer.Description()
	}
	return operation.Name()
}

// DescribeOperations describes each operation in order.
func DescribeOperations(operations []Operation) []string {
	descriptions := make([]string, 0, len(operations))
	for _, operation := range operations {
		if operation == nil {
			continue
		}
		descriptions = append(descriptions, DescribeOperation(operation))
	}
	return descriptions
}
