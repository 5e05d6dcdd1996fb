// Package gitops runs the two git operations a workspace sync needs: cloning a
// missing repository and fetching all remotes of an existing one.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/ranger/internal/execshell"
)

const (
	gitCloneSubcommandConstant              = "clone"
	gitFetchSubcommandConstant              = "fetch"
	gitAllRemotesFlagConstant               = "--all"
	gitDirectoryFlagConstant                = "-C"
	gitTerminalPromptVariableConstant       = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant       = "0"
	parentDirectoryPermissionsConstant      = 0o755
	gitExecutorNotConfiguredMessageConstant = "git executor not configured"
	repositoryURLRequiredMessageConstant    = "repository url must be provided"
	destinationPathRequiredMessageConstant  = "destination path must be provided"
	parentDirectoryErrorTemplateConstant    = "unable to create parent directory %s: %w"
	cloneErrorTemplateConstant              = "git clone failed: %w"
	fetchErrorTemplateConstant              = "git fetch failed: %w"
)

// ErrGitExecutorNotConfigured indicates the executor was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)

var (
	errRepositoryURLRequired   = errors.New(repositoryURLRequiredMessageConstant)
	errDestinationPathRequired = errors.New(destinationPathRequiredMessageConstant)
)

// GitExecutor runs git with the supplied details.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Executor clones and fetches repositories through git. Each call is a single
// attempt; failures carry git's standard error through execshell.CommandFailedError.
type Executor struct {
	gitExecutor GitExecutor
	fileSystem  afero.Fs
}

// NewExecutor constructs an Executor. A nil fileSystem selects the OS filesystem.
func NewExecutor(gitExecutor GitExecutor, fileSystem afero.Fs) (*Executor, error) {
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &Executor{gitExecutor: gitExecutor, fileSystem: fileSystem}, nil
}

// Clone creates the destination's parent directory and runs `git clone <url> <destination>`.
func (executor *Executor) Clone(executionContext context.Context, repositoryURL string, destinationPath string) error {
	if len(strings.TrimSpace(repositoryURL)) == 0 {
		return errRepositoryURLRequired
	}
	if len(strings.TrimSpace(destinationPath)) == 0 {
		return errDestinationPathRequired
	}

	parentDirectory := filepath.Dir(destinationPath)
	if mkdirError := executor.fileSystem.MkdirAll(parentDirectory, parentDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(parentDirectoryErrorTemplateConstant, parentDirectory, mkdirError)
	}

	details := executor.commandDetails(gitCloneSubcommandConstant, repositoryURL, destinationPath)
	if _, cloneError := executor.gitExecutor.ExecuteGit(executionContext, details); cloneError != nil {
		return fmt.Errorf(cloneErrorTemplateConstant, cloneError)
	}
	return nil
}

// FetchAll runs `git -C <path> fetch --all` in an existing repository.
func (executor *Executor) FetchAll(executionContext context.Context, repositoryPath string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return errDestinationPathRequired
	}

	details := executor.commandDetails(gitDirectoryFlagConstant, repositoryPath, gitFetchSubcommandConstant, gitAllRemotesFlagConstant)
	if _, fetchError := executor.gitExecutor.ExecuteGit(executionContext, details); fetchError != nil {
		return fmt.Errorf(fetchErrorTemplateConstant, fetchError)
	}
	return nil
}

func (executor *Executor) commandDetails(arguments ...string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:            arguments,
		EnvironmentVariables: map[string]string{gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant},
	}
}
