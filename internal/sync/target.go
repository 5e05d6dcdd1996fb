package sync

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/temirov/ranger/internal/workspace"
)

const gitMetadataDirectoryNameConstant = ".git"

// RepositoryTarget is one repository slated for clone or fetch.
type RepositoryTarget struct {
	URL                    string
	Name                   string
	LocalDirectoryOverride string
	LocalPath              string
	// Exists records whether LocalPath/.git was present when the target was built.
	Exists bool
}

// Action reports what an execution would do with the target.
func (target RepositoryTarget) Action() TargetAction {
	if target.Exists {
		return TargetActionFetch
	}
	return TargetActionClone
}

// TargetAction is the git operation chosen for a target.
type TargetAction string

// Supported target actions.
const (
	TargetActionClone TargetAction = "clone"
	TargetActionFetch TargetAction = "fetch"
)

func newRepositoryTarget(fileSystem afero.Fs, baseDirectory string, repositoryURL string, localDirectoryOverride string) RepositoryTarget {
	name := workspace.DeriveRepositoryName(repositoryURL)
	localPath := workspace.ResolveRepositoryPath(baseDirectory, localDirectoryOverride, name)
	return RepositoryTarget{
		URL:                    repositoryURL,
		Name:                   name,
		LocalDirectoryOverride: localDirectoryOverride,
		LocalPath:              localPath,
		Exists:                 repositoryExists(fileSystem, localPath),
	}
}

func repositoryExists(fileSystem afero.Fs, localPath string) bool {
	exists, probeError := afero.Exists(fileSystem, filepath.Join(localPath, gitMetadataDirectoryNameConstant))
	return probeError == nil && exists
}
