// Package sync keeps a workspace of git repositories in step with its manifest.
//
// TargetBuilder merges standalone manifest repositories with projects discovered
// in GitLab groups into an ordered list of RepositoryTarget values. Service then
// previews or executes the list, cloning missing repositories and fetching
// existing ones one at a time, and folds every outcome into a SyncReport.
//
// Failures degrade by stage. Configuration errors abort the run, credential
// errors skip a provider's groups, discovery errors skip a single group and
// execution errors are recorded against a single target. StageOutcome names
// these decisions explicitly.
package sync
