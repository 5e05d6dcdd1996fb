// Package manifest reads and scaffolds the workspace manifest (ranger.yaml) that
// declares standalone repositories, GitLab groups and provider credentials.
package manifest
