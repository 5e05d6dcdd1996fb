package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	pathutils "github.com/temirov/ranger/internal/utils/path"
)

const (
	// ManifestFileName is the conventional manifest file name inside a workspace.
	ManifestFileName = "ranger.yaml"

	manifestPathRequiredMessageConstant  = "manifest path must be provided"
	manifestNotFoundTemplateConstant     = "manifest not found at %s"
	manifestParseTemplateConstant        = "failed to parse manifest %s: %v"
	manifestReadTemplateConstant         = "failed to read manifest %s: %w"
	repositoryURLMissingTemplateConstant = "repos[%d] is missing url"
	groupNameMissingTemplateConstant     = "groups.gitlab[%d] is missing name"
	gitLabHostMissingMessageConstant     = "providers.gitlab is missing host"
	hostTrailingSeparatorConstant        = "/"
	groupPathSeparatorConstant           = "/"
)

// ErrManifestPathRequired indicates an empty manifest path was supplied.
var ErrManifestPathRequired = errors.New(manifestPathRequiredMessageConstant)

// Manifest is the declarative description of a workspace.
type Manifest struct {
	Providers    ProviderConfiguration     `yaml:"providers"`
	Groups       GroupsConfiguration       `yaml:"groups"`
	Repositories []RepositoryConfiguration `yaml:"repos"`
}

// ProviderConfiguration lists provider credentials keyed by provider.
type ProviderConfiguration struct {
	GitLab *GitLabProviderConfiguration `yaml:"gitlab"`
}

// GitLabProviderConfiguration locates a GitLab instance and its access token.
type GitLabProviderConfiguration struct {
	Host  string          `yaml:"host"`
	Token SecretReference `yaml:"token"`
}

// GroupsConfiguration lists provider groups to expand into repositories.
type GroupsConfiguration struct {
	GitLab []GroupConfiguration `yaml:"gitlab"`
}

// GroupConfiguration describes a single GitLab group.
type GroupConfiguration struct {
	Name           string `yaml:"name"`
	LocalDirectory string `yaml:"local_dir"`
	Recursive      bool   `yaml:"recursive"`
}

// RepositoryConfiguration describes a standalone repository.
type RepositoryConfiguration struct {
	URL            string `yaml:"url"`
	LocalDirectory string `yaml:"local_dir"`
}

// NotFoundError reports a manifest path with no file behind it.
type NotFoundError struct {
	Path string
}

func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(manifestNotFoundTemplateConstant, notFoundError.Path)
}

// ParseError reports a manifest that exists but cannot be decoded or is structurally invalid.
type ParseError struct {
	Path  string
	Cause error
}

func (parseError ParseError) Error() string {
	return fmt.Sprintf(manifestParseTemplateConstant, parseError.Path, parseError.Cause)
}

// Unwrap exposes the decoding or validation failure.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

// Loader reads manifests from a filesystem.
type Loader struct {
	fileSystem   afero.Fs
	homeExpander *pathutils.HomeExpander
}

// NewLoader constructs a Loader. Nil collaborators fall back to the OS filesystem and home lookup.
func NewLoader(fileSystem afero.Fs, homeExpander *pathutils.HomeExpander) *Loader {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &Loader{fileSystem: fileSystem, homeExpander: homeExpander}
}

// Load reads, decodes and validates the manifest at manifestPath. Every failure it
// returns is a configuration error: NotFoundError, ParseError or a wrapped read error.
func (loader *Loader) Load(manifestPath string) (Manifest, error) {
	trimmedPath := strings.TrimSpace(manifestPath)
	if len(trimmedPath) == 0 {
		return Manifest{}, ErrManifestPathRequired
	}

	contentBytes, readError := afero.ReadFile(loader.fileSystem, trimmedPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return Manifest{}, NotFoundError{Path: trimmedPath}
		}
		return Manifest{}, fmt.Errorf(manifestReadTemplateConstant, trimmedPath, readError)
	}

	var manifest Manifest
	if unmarshalError := yaml.Unmarshal(contentBytes, &manifest); unmarshalError != nil {
		return Manifest{}, ParseError{Path: trimmedPath, Cause: unmarshalError}
	}

	if validationError := loader.normalize(&manifest); validationError != nil {
		return Manifest{}, ParseError{Path: trimmedPath, Cause: validationError}
	}

	return manifest, nil
}

func (loader *Loader) normalize(manifest *Manifest) error {
	if manifest.Providers.GitLab != nil {
		host := strings.TrimRight(strings.TrimSpace(manifest.Providers.GitLab.Host), hostTrailingSeparatorConstant)
		if len(host) == 0 {
			return errors.New(gitLabHostMissingMessageConstant)
		}
		manifest.Providers.GitLab.Host = host
		manifest.Providers.GitLab.Token = SecretReference(strings.TrimSpace(string(manifest.Providers.GitLab.Token)))
	}

	for repositoryIndex := range manifest.Repositories {
		repository := &manifest.Repositories[repositoryIndex]
		repository.URL = strings.TrimSpace(repository.URL)
		if len(repository.URL) == 0 {
			return fmt.Errorf(repositoryURLMissingTemplateConstant, repositoryIndex)
		}
		repository.LocalDirectory = loader.homeExpander.Expand(strings.TrimSpace(repository.LocalDirectory))
	}

	for groupIndex := range manifest.Groups.GitLab {
		group := &manifest.Groups.GitLab[groupIndex]
		group.Name = strings.Trim(strings.TrimSpace(group.Name), groupPathSeparatorConstant)
		if len(group.Name) == 0 {
			return fmt.Errorf(groupNameMissingTemplateConstant, groupIndex)
		}
		group.LocalDirectory = loader.homeExpander.Expand(strings.TrimSpace(group.LocalDirectory))
	}

	return nil
}
