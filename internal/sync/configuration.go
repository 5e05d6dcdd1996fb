package sync

import (
	"strings"
	"time"

	"github.com/temirov/ranger/internal/gitlab"
	"github.com/temirov/ranger/internal/manifest"
)

const (
	configurationManifestKeyConstant       = "manifest"
	configurationDryRunKeyConstant         = "dry_run"
	configurationPageSizeKeyConstant       = "gitlab.page_size"
	configurationMaximumPagesKeyConstant   = "gitlab.max_pages"
	configurationRequestTimeoutKeyConstant = "gitlab.request_timeout"
	configurationCloneProtocolKeyConstant  = "gitlab.clone_protocol"
	configurationKeySeparatorConstant      = "."
)

// CommandConfiguration captures the sync tool section of the application configuration.
type CommandConfiguration struct {
	ManifestPath string              `mapstructure:"manifest"`
	DryRun       bool                `mapstructure:"dry_run"`
	GitLab       GitLabConfiguration `mapstructure:"gitlab"`
}

// GitLabConfiguration tunes GitLab discovery.
type GitLabConfiguration struct {
	PageSize       int           `mapstructure:"page_size"`
	MaximumPages   int           `mapstructure:"max_pages"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CloneProtocol  string        `mapstructure:"clone_protocol"`
}

// DefaultCommandConfiguration provides baseline values for the sync commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ManifestPath: manifest.ManifestFileName,
		DryRun:       false,
		GitLab: GitLabConfiguration{
			PageSize:       gitlab.DefaultPageSize,
			MaximumPages:   gitlab.DefaultMaximumPages,
			RequestTimeout: gitlab.DefaultRequestTimeout,
			CloneProtocol:  string(gitlab.CloneProtocolSSH),
		},
	}
}

// DefaultConfigurationValues returns the defaults keyed under rootKey for registration with viper.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationManifestKeyConstant:       defaults.ManifestPath,
		prefix + configurationDryRunKeyConstant:         defaults.DryRun,
		prefix + configurationPageSizeKeyConstant:       defaults.GitLab.PageSize,
		prefix + configurationMaximumPagesKeyConstant:   defaults.GitLab.MaximumPages,
		prefix + configurationRequestTimeoutKeyConstant: defaults.GitLab.RequestTimeout.String(),
		prefix + configurationCloneProtocolKeyConstant:  defaults.GitLab.CloneProtocol,
	}
}

// Sanitize trims values and replaces unusable numbers with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.ManifestPath = strings.TrimSpace(configuration.ManifestPath)
	if len(sanitized.ManifestPath) == 0 {
		sanitized.ManifestPath = defaults.ManifestPath
	}
	if sanitized.GitLab.PageSize <= 0 {
		sanitized.GitLab.PageSize = defaults.GitLab.PageSize
	}
	if sanitized.GitLab.MaximumPages <= 0 {
		sanitized.GitLab.MaximumPages = defaults.GitLab.MaximumPages
	}
	if sanitized.GitLab.RequestTimeout <= 0 {
		sanitized.GitLab.RequestTimeout = defaults.GitLab.RequestTimeout
	}
	sanitized.GitLab.CloneProtocol = strings.ToLower(strings.TrimSpace(configuration.GitLab.CloneProtocol))
	if len(sanitized.GitLab.CloneProtocol) == 0 {
		sanitized.GitLab.CloneProtocol = defaults.GitLab.CloneProtocol
	}

	return sanitized
}
