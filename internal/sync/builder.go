package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/gitlab"
	"github.com/temirov/ranger/internal/manifest"
	"github.com/temirov/ranger/internal/shared"
	"github.com/temirov/ranger/internal/workspace"
)

const (
	gitLabProviderNameConstant           = "gitlab"
	providerMissingMessageConstant       = "no gitlab provider configured"
	skipProviderWarningTemplateConstant  = "Warning: skipping %s groups: %v\n"
	skipGroupWarningTemplateConstant     = "Warning: failed to discover projects for group '%s': %v\n"
	discoveryAbortedTemplateConstant     = "discovery of group %s interrupted: %w"
	loggerRequiredMessageConstant        = "target builder logger not configured"
	listerFactoryRequiredMessageConstant = "target builder project lister factory not configured"
	discoveringGroupLogMessageConstant   = "discovering repositories in gitlab group"
	groupDiscoveredLogMessageConstant    = "discovered repositories in gitlab group"
	providerSkippedLogMessageConstant    = "skipping provider groups"
	groupSkippedLogMessageConstant       = "skipping group"
	logFieldProviderConstant             = "provider"
	logFieldGroupConstant                = "group"
	logFieldOutcomeConstant              = "outcome"
	logFieldRepositoryCountConstant      = "repository_count"
)

// ErrTargetBuilderLoggerNotConfigured indicates the builder was constructed without a logger.
var ErrTargetBuilderLoggerNotConfigured = errors.New(loggerRequiredMessageConstant)

// ErrProjectListerFactoryNotConfigured indicates the builder cannot reach GitLab.
var ErrProjectListerFactoryNotConfigured = errors.New(listerFactoryRequiredMessageConstant)

var errProviderMissing = errors.New(providerMissingMessageConstant)

// ProjectLister lists the projects of a GitLab group.
type ProjectLister interface {
	ListGroupProjects(executionContext context.Context, groupPath string, recursive bool) ([]gitlab.Project, error)
}

// ProjectListerFactory creates a ProjectLister for a provider once its token is resolved.
type ProjectListerFactory func(provider manifest.GitLabProviderConfiguration, token string) (ProjectLister, error)

// Warning describes a degraded stage that did not stop the run.
type Warning struct {
	Outcome  StageOutcome
	Provider string
	Group    string
	Cause    error
}

// Message renders the warning for people.
func (warning Warning) Message() string {
	if warning.Outcome == StageOutcomeSkipGroup {
		return fmt.Sprintf(skipGroupWarningTemplateConstant, warning.Group, warning.Cause)
	}
	return fmt.Sprintf(skipProviderWarningTemplateConstant, warning.Provider, warning.Cause)
}

// TargetSet is the ordered result of building targets: standalone repositories
// first, then group projects, in manifest and API order. Duplicates are kept.
type TargetSet struct {
	Targets  []RepositoryTarget
	Warnings []Warning
}

// TargetBuilderDependencies lists the collaborators of a TargetBuilder.
type TargetBuilderDependencies struct {
	Logger               *zap.Logger
	FileSystem           afero.Fs
	Reporter             shared.Reporter
	ProjectListerFactory ProjectListerFactory
	EnvironmentLookup    manifest.EnvironmentLookup
	CloneProtocol        gitlab.CloneProtocol
}

// TargetBuilder expands a manifest into repository targets.
type TargetBuilder struct {
	logger               *zap.Logger
	fileSystem           afero.Fs
	reporter             shared.Reporter
	projectListerFactory ProjectListerFactory
	environmentLookup    manifest.EnvironmentLookup
	cloneProtocol        gitlab.CloneProtocol
}

// NewTargetBuilder validates dependencies and constructs a TargetBuilder.
func NewTargetBuilder(dependencies TargetBuilderDependencies) (*TargetBuilder, error) {
	if dependencies.Logger == nil {
		return nil, ErrTargetBuilderLoggerNotConfigured
	}
	if dependencies.ProjectListerFactory == nil {
		return nil, ErrProjectListerFactoryNotConfigured
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewDiscardReporter()
	}
	cloneProtocol := dependencies.CloneProtocol
	if len(cloneProtocol) == 0 {
		cloneProtocol = gitlab.CloneProtocolSSH
	}
	return &TargetBuilder{
		logger:               dependencies.Logger,
		fileSystem:           fileSystem,
		reporter:             reporter,
		projectListerFactory: dependencies.ProjectListerFactory,
		environmentLookup:    dependencies.EnvironmentLookup,
		cloneProtocol:        cloneProtocol,
	}, nil
}

// Build expands workspaceManifest into targets rooted at baseDirectory. Standalone
// repositories are kept when their URL contains targetFilter and groups when their
// name contains it; an empty filter keeps everything. Credential and discovery
// failures become warnings. Build fails only when the context is cancelled.
func (builder *TargetBuilder) Build(executionContext context.Context, workspaceManifest manifest.Manifest, baseDirectory string, targetFilter string) (TargetSet, error) {
	targetSet := TargetSet{Targets: make([]RepositoryTarget, 0, len(workspaceManifest.Repositories))}

	for _, repository := range workspaceManifest.Repositories {
		if !matchesFilter(repository.URL, targetFilter) {
			continue
		}
		targetSet.Targets = append(targetSet.Targets, newRepositoryTarget(builder.fileSystem, baseDirectory, repository.URL, repository.LocalDirectory))
	}

	selectedGroups := make([]manifest.GroupConfiguration, 0, len(workspaceManifest.Groups.GitLab))
	for _, group := range workspaceManifest.Groups.GitLab {
		if matchesFilter(group.Name, targetFilter) {
			selectedGroups = append(selectedGroups, group)
		}
	}
	if len(selectedGroups) == 0 {
		return targetSet, nil
	}

	lister, credentialError := builder.resolveLister(workspaceManifest.Providers.GitLab)
	if outcome := ClassifyError(StageCredential, credentialError); outcome != StageOutcomeContinue {
		builder.warn(&targetSet, Warning{Outcome: outcome, Provider: gitLabProviderNameConstant, Cause: credentialError})
		return targetSet, nil
	}

	for _, group := range selectedGroups {
		builder.logger.Info(discoveringGroupLogMessageConstant, zap.String(logFieldGroupConstant, group.Name))

		projects, discoveryError := lister.ListGroupProjects(executionContext, group.Name, group.Recursive)
		if discoveryError != nil && executionContext.Err() != nil {
			return TargetSet{}, fmt.Errorf(discoveryAbortedTemplateConstant, group.Name, executionContext.Err())
		}
		if outcome := ClassifyError(StageDiscovery, discoveryError); outcome != StageOutcomeContinue {
			builder.warn(&targetSet, Warning{Outcome: outcome, Provider: gitLabProviderNameConstant, Group: group.Name, Cause: discoveryError})
			continue
		}

		builder.logger.Info(groupDiscoveredLogMessageConstant, zap.String(logFieldGroupConstant, group.Name), zap.Int(logFieldRepositoryCountConstant, len(projects)))
		for _, project := range projects {
			localDirectory := workspace.GroupProjectDirectory(group.LocalDirectory, group.Name, project.PathWithNamespace)
			targetSet.Targets = append(targetSet.Targets, newRepositoryTarget(builder.fileSystem, baseDirectory, builder.projectCloneURL(project), localDirectory))
		}
	}

	return targetSet, nil
}

func (builder *TargetBuilder) resolveLister(provider *manifest.GitLabProviderConfiguration) (ProjectLister, error) {
	if provider == nil {
		return nil, errProviderMissing
	}
	token, resolveError := provider.Token.Resolve(builder.environmentLookup)
	if resolveError != nil {
		return nil, resolveError
	}
	return builder.projectListerFactory(*provider, token)
}

func (builder *TargetBuilder) projectCloneURL(project gitlab.Project) string {
	if cloneURL := project.CloneURL(builder.cloneProtocol); len(cloneURL) > 0 {
		return cloneURL
	}
	if len(project.SSHURLToRepo) > 0 {
		return project.SSHURLToRepo
	}
	return project.HTTPURLToRepo
}

func (builder *TargetBuilder) warn(targetSet *TargetSet, warning Warning) {
	targetSet.Warnings = append(targetSet.Warnings, warning)

	logMessage := providerSkippedLogMessageConstant
	if warning.Outcome == StageOutcomeSkipGroup {
		logMessage = groupSkippedLogMessageConstant
	}
	builder.logger.Warn(
		logMessage,
		zap.String(logFieldProviderConstant, warning.Provider),
		zap.String(logFieldGroupConstant, warning.Group),
		zap.Stringer(logFieldOutcomeConstant, warning.Outcome),
		zap.Error(warning.Cause),
	)
	builder.reporter.Printf("%s", warning.Message())
}

func matchesFilter(candidate string, targetFilter string) bool {
	if len(targetFilter) == 0 {
		return true
	}
	return strings.Contains(candidate, targetFilter)
}
