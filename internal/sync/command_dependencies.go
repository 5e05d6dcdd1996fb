package sync

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/dependencies"
	"github.com/temirov/ranger/internal/gitlab"
	"github.com/temirov/ranger/internal/gitops"
	"github.com/temirov/ranger/internal/manifest"
	"github.com/temirov/ranger/internal/shared"
	"github.com/temirov/ranger/internal/utils"
	pathutils "github.com/temirov/ranger/internal/utils/path"
)

const (
	manifestPathResolutionTemplateConstant = "unable to resolve manifest path %s: %w"
	manifestLoadedLogMessageConstant       = "manifest loaded"
	logFieldManifestPathConstant           = "manifest_path"
	logFieldBaseDirectoryConstant          = "base_directory"
	logFieldStandaloneCountConstant        = "standalone_repositories"
	logFieldGroupCountConstant             = "gitlab_groups"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandDependencies holds the collaborators shared by the sync, status, ls and verify
// commands. Nil fields fall back to production defaults.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	FileSystem                   afero.Fs
	HTTPClient                   gitlab.HTTPClient
	GitExecutor                  gitops.GitExecutor
	EnvironmentLookup            manifest.EnvironmentLookup
}

type loadedWorkspace struct {
	manifest      manifest.Manifest
	manifestPath  string
	baseDirectory string
}

func (commandDependencies CommandDependencies) resolveLogger() *zap.Logger {
	if commandDependencies.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := commandDependencies.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (commandDependencies CommandDependencies) resolveConfiguration() CommandConfiguration {
	if commandDependencies.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return commandDependencies.ConfigurationProvider().Sanitize()
}

func (commandDependencies CommandDependencies) humanReadableLogging() bool {
	if commandDependencies.HumanReadableLoggingProvider == nil {
		return false
	}
	return commandDependencies.HumanReadableLoggingProvider()
}

// loadWorkspace reads the manifest named by the root --manifest flag or the
// configuration. The base directory is the directory containing the manifest.
func (commandDependencies CommandDependencies) loadWorkspace(command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger) (loadedWorkspace, error) {
	manifestPath := configuration.ManifestPath
	if contextManifestPath, available := utils.NewCommandContextAccessor().ManifestPath(commandContext(command)); available {
		manifestPath = contextManifestPath
	}

	homeExpander := pathutils.NewHomeExpander()
	absoluteManifestPath, absoluteError := filepath.Abs(homeExpander.Expand(manifestPath))
	if absoluteError != nil {
		return loadedWorkspace{}, fmt.Errorf(manifestPathResolutionTemplateConstant, manifestPath, absoluteError)
	}

	loader := manifest.NewLoader(dependencies.ResolveFileSystem(commandDependencies.FileSystem), homeExpander)
	workspaceManifest, loadError := loader.Load(absoluteManifestPath)
	if loadError != nil {
		return loadedWorkspace{}, loadError
	}

	baseDirectory := filepath.Dir(absoluteManifestPath)
	logger.Debug(
		manifestLoadedLogMessageConstant,
		zap.String(logFieldManifestPathConstant, absoluteManifestPath),
		zap.String(logFieldBaseDirectoryConstant, baseDirectory),
		zap.Int(logFieldStandaloneCountConstant, len(workspaceManifest.Repositories)),
		zap.Int(logFieldGroupCountConstant, len(workspaceManifest.Groups.GitLab)),
	)

	return loadedWorkspace{manifest: workspaceManifest, manifestPath: absoluteManifestPath, baseDirectory: baseDirectory}, nil
}

// buildTargets loads the manifest and expands it into targets, printing warnings to reporter.
func (commandDependencies CommandDependencies) buildTargets(command *cobra.Command, targetFilter string, reporter shared.Reporter) (TargetSet, CommandConfiguration, error) {
	configuration := commandDependencies.resolveConfiguration()
	logger := commandDependencies.resolveLogger()

	workspace, workspaceError := commandDependencies.loadWorkspace(command, configuration, logger)
	if workspaceError != nil {
		return TargetSet{}, configuration, workspaceError
	}

	cloneProtocol, protocolError := gitlab.ParseCloneProtocol(configuration.GitLab.CloneProtocol)
	if protocolError != nil {
		return TargetSet{}, configuration, protocolError
	}

	targetBuilder, builderError := NewTargetBuilder(TargetBuilderDependencies{
		Logger:               logger,
		FileSystem:           dependencies.ResolveFileSystem(commandDependencies.FileSystem),
		Reporter:             reporter,
		ProjectListerFactory: commandDependencies.projectListerFactory(logger, configuration.GitLab),
		EnvironmentLookup:    dependencies.ResolveEnvironmentLookup(commandDependencies.EnvironmentLookup),
		CloneProtocol:        cloneProtocol,
	})
	if builderError != nil {
		return TargetSet{}, configuration, builderError
	}

	targetSet, buildError := targetBuilder.Build(commandContext(command), workspace.manifest, workspace.baseDirectory, targetFilter)
	return targetSet, configuration, buildError
}

func (commandDependencies CommandDependencies) projectListerFactory(logger *zap.Logger, gitLabConfiguration GitLabConfiguration) ProjectListerFactory {
	return func(provider manifest.GitLabProviderConfiguration, token string) (ProjectLister, error) {
		client, clientError := commandDependencies.newGitLabClient(logger, gitLabConfiguration, provider, token)
		if clientError != nil {
			return nil, clientError
		}
		return client, nil
	}
}

func (commandDependencies CommandDependencies) newGitLabClient(logger *zap.Logger, gitLabConfiguration GitLabConfiguration, provider manifest.GitLabProviderConfiguration, token string) (*gitlab.Client, error) {
	return gitlab.NewClient(logger, dependencies.ResolveHTTPClient(commandDependencies.HTTPClient), gitlab.ServiceConfiguration{
		BaseURL:        provider.Host,
		Token:          token,
		PageSize:       gitLabConfiguration.PageSize,
		MaximumPages:   gitLabConfiguration.MaximumPages,
		RequestTimeout: gitLabConfiguration.RequestTimeout,
	})
}

func commandContext(command *cobra.Command) context.Context {
	if command == nil || command.Context() == nil {
		return context.Background()
	}
	return command.Context()
}
