// Package cli constructs the git-ranger command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives around the workspace sync commands.
package cli
