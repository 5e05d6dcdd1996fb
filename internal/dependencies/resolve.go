// Package dependencies supplies production defaults for collaborators that
// commands accept as optional injections.
package dependencies

import (
	"net/http"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/execshell"
	"github.com/temirov/ranger/internal/gitlab"
	"github.com/temirov/ranger/internal/gitops"
	"github.com/temirov/ranger/internal/manifest"
	"github.com/temirov/ranger/internal/ui"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveHTTPClient returns the provided HTTP client or http.DefaultClient.
func ResolveHTTPClient(existing gitlab.HTTPClient) gitlab.HTTPClient {
	if existing != nil {
		return existing
	}
	return http.DefaultClient
}

// ResolveEnvironmentLookup returns the provided lookup or os.LookupEnv.
func ResolveEnvironmentLookup(existing manifest.EnvironmentLookup) manifest.EnvironmentLookup {
	if existing != nil {
		return existing
	}
	return os.LookupEnv
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging routes command lifecycle events through the console renderer.
func ResolveGitExecutor(existing gitops.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (gitops.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var observer execshell.CommandEventObserver
	if humanReadableLogging {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, commandRunner, observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
