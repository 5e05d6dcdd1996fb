// Package workspace maps repository URLs and GitLab namespaces onto local workspace paths.
package workspace

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	urlPathSeparatorConstant      = "/"
	scpHostSeparatorConstant      = ":"
	gitSuffixConstant             = ".git"
	unknownRepositoryNameConstant = "unknown"
)

// DeriveRepositoryName returns the repository name encoded in a clone URL.
// It handles https, ssh:// and scp-style (git@host:group/project.git) URLs and
// falls back to "unknown" when nothing usable remains.
func DeriveRepositoryName(repositoryURL string) string {
	trimmedURL := strings.TrimSpace(repositoryURL)
	trimmedURL = strings.TrimSuffix(trimmedURL, urlPathSeparatorConstant)
	trimmedURL = strings.TrimSuffix(trimmedURL, gitSuffixConstant)

	name := lastSegment(trimmedURL, urlPathSeparatorConstant)
	name = lastSegment(name, scpHostSeparatorConstant)
	if len(name) == 0 {
		return unknownRepositoryNameConstant
	}
	return name
}

// ResolveRepositoryPath computes the destination of a repository. An absolute
// override replaces baseDirectory, a relative one is joined to it, and an empty
// override places the repository directly under baseDirectory.
func ResolveRepositoryPath(baseDirectory string, localDirectoryOverride string, repositoryName string) string {
	override := strings.TrimSpace(localDirectoryOverride)
	switch {
	case len(override) == 0:
		return filepath.Join(baseDirectory, repositoryName)
	case filepath.IsAbs(override):
		return filepath.Join(override, repositoryName)
	default:
		return filepath.Join(baseDirectory, override, repositoryName)
	}
}

// NamespaceSubdirectory returns the subgroup path between a configured group and a
// project, e.g. group "team/sub" and project "team/sub/subgrp/beta" give "subgrp".
// Projects directly in the group, or outside it, give "".
func NamespaceSubdirectory(groupPath string, pathWithNamespace string) string {
	projectNamespace := path.Dir(strings.Trim(pathWithNamespace, urlPathSeparatorConstant))
	normalizedGroup := strings.Trim(groupPath, urlPathSeparatorConstant)
	if projectNamespace == "." || len(normalizedGroup) == 0 {
		return ""
	}

	if strings.EqualFold(projectNamespace, normalizedGroup) {
		return ""
	}
	groupPrefix := normalizedGroup + urlPathSeparatorConstant
	if len(projectNamespace) <= len(groupPrefix) || !strings.EqualFold(projectNamespace[:len(groupPrefix)], groupPrefix) {
		return ""
	}
	return projectNamespace[len(groupPrefix):]
}

// GroupProjectDirectory combines a group's local directory prefix with the project's
// subgroup nesting. The result is used as the project's local directory override.
func GroupProjectDirectory(groupLocalDirectory string, groupPath string, pathWithNamespace string) string {
	subdirectory := NamespaceSubdirectory(groupPath, pathWithNamespace)
	prefix := strings.TrimSpace(groupLocalDirectory)
	if len(subdirectory) == 0 {
		return prefix
	}
	localSubdirectory := filepath.FromSlash(subdirectory)
	if len(prefix) == 0 {
		return localSubdirectory
	}
	return filepath.Join(prefix, localSubdirectory)
}

func lastSegment(value string, separator string) string {
	separatorIndex := strings.LastIndex(value, separator)
	if separatorIndex < 0 {
		return value
	}
	return value[separatorIndex+len(separator):]
}
