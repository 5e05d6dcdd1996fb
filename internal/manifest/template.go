package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	defaultTargetDirectoryConstant        = "."
	manifestFilePermissionsConstant       = 0o644
	manifestDirectoryPermissionsConstant  = 0o755
	manifestAlreadyExistsMessageConstant  = "manifest already exists"
	manifestAlreadyExistsTemplateConstant = "%w at %s"
	manifestWriteTemplateConstant         = "failed to write manifest %s: %w"
	manifestDirectoryTemplateConstant     = "failed to create directory %s: %w"
)

//go:embed default_manifest.yaml
var defaultManifestTemplate []byte

// ErrManifestAlreadyExists indicates init was asked to overwrite an existing manifest.
var ErrManifestAlreadyExists = errors.New(manifestAlreadyExistsMessageConstant)

// DefaultTemplate returns a copy of the commented starter manifest.
func DefaultTemplate() []byte {
	return append([]byte(nil), defaultManifestTemplate...)
}

// WriteDefault writes the starter manifest into targetDirectory and returns its path.
// An existing manifest is never overwritten.
func WriteDefault(fileSystem afero.Fs, targetDirectory string) (string, error) {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	trimmedDirectory := strings.TrimSpace(targetDirectory)
	if len(trimmedDirectory) == 0 {
		trimmedDirectory = defaultTargetDirectoryConstant
	}

	manifestPath := filepath.Join(trimmedDirectory, ManifestFileName)
	exists, existsError := afero.Exists(fileSystem, manifestPath)
	if existsError != nil {
		return "", fmt.Errorf(manifestWriteTemplateConstant, manifestPath, existsError)
	}
	if exists {
		return "", fmt.Errorf(manifestAlreadyExistsTemplateConstant, ErrManifestAlreadyExists, manifestPath)
	}

	if mkdirError := fileSystem.MkdirAll(trimmedDirectory, manifestDirectoryPermissionsConstant); mkdirError != nil {
		return "", fmt.Errorf(manifestDirectoryTemplateConstant, trimmedDirectory, mkdirError)
	}
	if writeError := afero.WriteFile(fileSystem, manifestPath, defaultManifestTemplate, manifestFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(manifestWriteTemplateConstant, manifestPath, writeError)
	}
	return manifestPath, nil
}
