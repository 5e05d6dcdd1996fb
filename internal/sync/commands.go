package sync

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/dependencies"
	"github.com/temirov/ranger/internal/gitops"
	"github.com/temirov/ranger/internal/shared"
)

const (
	syncCommandUseConstant                  = "sync [target]"
	syncCommandShortDescriptionConstant     = "Clone missing repositories and fetch existing ones"
	syncCommandLongDescriptionConstant      = "sync expands the manifest into repositories, clones those that are missing and runs git fetch --all in those already present. An optional target keeps only standalone repositories whose URL contains it and GitLab groups whose name contains it."
	statusCommandUseConstant                = "status"
	statusCommandShortDescriptionConstant   = "Show which manifest repositories are cloned"
	listCommandUseConstant                  = "ls"
	listCommandShortDescriptionConstant     = "List every repository the manifest expands to"
	verifyCommandUseConstant                = "verify"
	verifyCommandShortDescriptionConstant   = "Check the GitLab token against the configured host"
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagShorthandConstant             = "n"
	dryRunFlagUsageConstant                 = "Show what would be cloned or fetched without changing anything"
	syncCommandErrorTemplateConstant        = "sync failed: %w"
	syncCompletedWithErrorsTemplateConstant = "sync completed with %d error(s): %w"
	statusCommandErrorTemplateConstant      = "status failed: %w"
	listCommandErrorTemplateConstant        = "ls failed: %w"
	verifyCommandErrorTemplateConstant      = "verify failed: %w"
	verifySuccessTemplateConstant           = "Token valid for %s as %s\n"
	verifyLogMessageConstant                = "gitlab token verified"
	logFieldHostConstant                    = "host"
	logFieldUsernameConstant                = "username"
)

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	CommandDependencies
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   syncCommandUseConstant,
		Short: syncCommandShortDescriptionConstant,
		Long:  syncCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}
	command.Flags().BoolP(dryRunFlagNameConstant, dryRunFlagShorthandConstant, false, dryRunFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	targetFilter := ""
	if len(arguments) > 0 {
		targetFilter = strings.TrimSpace(arguments[0])
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	targetSet, configuration, buildError := builder.buildTargets(command, targetFilter, reporter)
	if buildError != nil {
		return fmt.Errorf(syncCommandErrorTemplateConstant, buildError)
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun, _ = command.Flags().GetBool(dryRunFlagNameConstant)
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}
	operations, operationsError := gitops.NewExecutor(gitExecutor, dependencies.ResolveFileSystem(builder.FileSystem))
	if operationsError != nil {
		return operationsError
	}
	service, serviceError := NewService(ServiceDependencies{Logger: logger, Operations: operations, Reporter: reporter})
	if serviceError != nil {
		return serviceError
	}

	if dryRun {
		WritePreview(reporter, service.Preview(targetSet.Targets))
		return nil
	}

	report := service.Execute(commandContext(command), targetSet.Targets)
	WriteSummary(reporter, report)
	if report.HasErrors() {
		return fmt.Errorf(syncCompletedWithErrorsTemplateConstant, len(report.Errors), report.Err())
	}
	return nil
}

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	CommandDependencies
}

// Build constructs the status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, _ []string) error {
	reporter := shared.NewWriterReporter(command.OutOrStdout())
	targetSet, _, buildError := builder.buildTargets(command, "", reporter)
	if buildError != nil {
		return fmt.Errorf(statusCommandErrorTemplateConstant, buildError)
	}
	WriteStatus(reporter, Status(targetSet.Targets))
	return nil
}

// ListCommandBuilder assembles the ls command.
type ListCommandBuilder struct {
	CommandDependencies
}

// Build constructs the ls command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, _ []string) error {
	reporter := shared.NewWriterReporter(command.OutOrStdout())
	targetSet, _, buildError := builder.buildTargets(command, "", reporter)
	if buildError != nil {
		return fmt.Errorf(listCommandErrorTemplateConstant, buildError)
	}
	WriteListing(reporter, targetSet.Targets)
	return nil
}

// VerifyCommandBuilder assembles the verify command.
type VerifyCommandBuilder struct {
	CommandDependencies
}

// Build constructs the verify command.
func (builder *VerifyCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   verifyCommandUseConstant,
		Short: verifyCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *VerifyCommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	workspace, workspaceError := builder.loadWorkspace(command, configuration, logger)
	if workspaceError != nil {
		return fmt.Errorf(verifyCommandErrorTemplateConstant, workspaceError)
	}
	provider := workspace.manifest.Providers.GitLab
	if provider == nil {
		return fmt.Errorf(verifyCommandErrorTemplateConstant, errProviderMissing)
	}

	token, tokenError := provider.Token.Resolve(dependencies.ResolveEnvironmentLookup(builder.EnvironmentLookup))
	if tokenError != nil {
		return fmt.Errorf(verifyCommandErrorTemplateConstant, tokenError)
	}

	client, clientError := builder.newGitLabClient(logger, configuration.GitLab, *provider, token)
	if clientError != nil {
		return fmt.Errorf(verifyCommandErrorTemplateConstant, clientError)
	}

	user, verifyError := client.VerifyToken(commandContext(command))
	if verifyError != nil {
		return fmt.Errorf(verifyCommandErrorTemplateConstant, verifyError)
	}

	logger.Info(verifyLogMessageConstant, zap.String(logFieldHostConstant, provider.Host), zap.String(logFieldUsernameConstant, user.Username))
	shared.NewWriterReporter(command.OutOrStdout()).Printf(verifySuccessTemplateConstant, provider.Host, user.Username)
	return nil
}
