package manifest

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/shared"
)

const (
	initCommandUseConstant              = "init"
	initCommandShortDescriptionConstant = "Create a starter ranger.yaml"
	initCommandLongDescriptionConstant  = "init writes a commented ranger.yaml manifest into the target directory. An existing manifest is left untouched."
	directoryFlagNameConstant           = "dir"
	directoryFlagShorthandConstant      = "d"
	directoryFlagUsageConstant          = "Directory that receives ranger.yaml"
	initCommandErrorTemplateConstant    = "init failed: %w"
	initializedMessageTemplateConstant  = "Initialized workspace manifest at %s\n"
	nextStepsMessageTemplateConstant    = "\nNext steps:\n  1. Edit %s with your providers, groups and repositories\n  2. Run 'git-ranger sync' to clone and fetch everything\n"
	manifestCreatedLogMessageConstant   = "manifest created"
	logFieldManifestPathConstant        = "manifest_path"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// InitCommandBuilder assembles the init command.
type InitCommandBuilder struct {
	LoggerProvider LoggerProvider
	FileSystem     afero.Fs
}

// Build constructs the init command.
func (builder *InitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortDescriptionConstant,
		Long:  initCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().StringP(directoryFlagNameConstant, directoryFlagShorthandConstant, defaultTargetDirectoryConstant, directoryFlagUsageConstant)
	return command, nil
}

func (builder *InitCommandBuilder) run(command *cobra.Command, _ []string) error {
	targetDirectory, _ := command.Flags().GetString(directoryFlagNameConstant)
	manifestPath, writeError := WriteDefault(builder.FileSystem, targetDirectory)
	if writeError != nil {
		return fmt.Errorf(initCommandErrorTemplateConstant, writeError)
	}

	builder.resolveLogger().Debug(manifestCreatedLogMessageConstant, zap.String(logFieldManifestPathConstant, manifestPath))

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	reporter.Printf(initializedMessageTemplateConstant, manifestPath)
	reporter.Printf(nextStepsMessageTemplateConstant, ManifestFileName)
	return nil
}

func (builder *InitCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
