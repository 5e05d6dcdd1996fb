// Package execshell runs external tools on behalf of git-ranger.
//
// ShellExecutor wraps a CommandRunner with structured logging and optional
// lifecycle observers, and classifies outcomes by exit status: a non-zero
// exit becomes CommandFailedError carrying captured standard error, while a
// process that cannot be spawned becomes CommandExecutionError.
// OSCommandRunner is the os/exec-backed default runner.
package execshell
