package sync

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/temirov/ranger/internal/shared"
)

const (
	targetFailureTemplateConstant      = "Failed to %s %s: %v"
	previewHeaderConstant              = "=== Dry Run ===\n"
	previewCloneHeaderTemplateConstant = "\nWould clone (%d):\n"
	previewFetchHeaderTemplateConstant = "\nWould fetch (%d):\n"
	previewTargetLineTemplateConstant  = "  %s -> %s\n"
	previewTotalTemplateConstant       = "\nTotal: %d repositories\n"
	previewFooterConstant              = "No changes made. Run without --dry-run to execute.\n"
	summaryHeaderConstant              = "\n=== Sync Summary ===\n"
	summaryTotalTemplateConstant       = "Total:   %d\n"
	summaryClonedTemplateConstant      = "Cloned:  %d\n"
	summaryFetchedTemplateConstant     = "Fetched: %d\n"
	summaryErrorsTemplateConstant      = "Errors:  %d\n"
	summaryErrorLineTemplateConstant   = "  - %s\n"
)

// TargetFailure records one target whose git operation failed.
type TargetFailure struct {
	Target RepositoryTarget
	Action TargetAction
	Cause  error
}

// Error renders the failure as "Failed to <action> <name>: <cause>".
func (failure TargetFailure) Error() string {
	return fmt.Sprintf(targetFailureTemplateConstant, failure.Action, failure.Target.Name, failure.Cause)
}

// Unwrap exposes the git failure.
func (failure TargetFailure) Unwrap() error {
	return failure.Cause
}

// SyncReport summarizes an executed sync. Cloned+Fetched+len(Errors) equals Total.
type SyncReport struct {
	Total    int
	ToClone  int
	ToFetch  int
	Cloned   int
	Fetched  int
	Errors   []string
	Failures []TargetFailure
}

// HasErrors reports whether any target failed.
func (report SyncReport) HasErrors() bool {
	return len(report.Errors) > 0
}

// Err combines every target failure, or returns nil when all targets succeeded.
func (report SyncReport) Err() error {
	var combined error
	for _, failure := range report.Failures {
		combined = multierr.Append(combined, failure)
	}
	return combined
}

func (report *SyncReport) recordFailure(failure TargetFailure) {
	report.Failures = append(report.Failures, failure)
	report.Errors = append(report.Errors, failure.Error())
}

// PreviewReport classifies targets without touching the filesystem.
type PreviewReport struct {
	Total   int
	ToClone []RepositoryTarget
	ToFetch []RepositoryTarget
}

// WritePreview prints the dry-run plan.
func WritePreview(reporter shared.Reporter, report PreviewReport) {
	reporter.Printf(previewHeaderConstant)
	if len(report.ToClone) > 0 {
		reporter.Printf(previewCloneHeaderTemplateConstant, len(report.ToClone))
		for _, target := range report.ToClone {
			reporter.Printf(previewTargetLineTemplateConstant, target.Name, target.LocalPath)
		}
	}
	if len(report.ToFetch) > 0 {
		reporter.Printf(previewFetchHeaderTemplateConstant, len(report.ToFetch))
		for _, target := range report.ToFetch {
			reporter.Printf(previewTargetLineTemplateConstant, target.Name, target.LocalPath)
		}
	}
	reporter.Printf(previewTotalTemplateConstant, report.Total)
	reporter.Printf(previewFooterConstant)
}

// WriteSummary prints the counts and failures of an executed sync.
func WriteSummary(reporter shared.Reporter, report SyncReport) {
	reporter.Printf(summaryHeaderConstant)
	reporter.Printf(summaryTotalTemplateConstant, report.Total)
	reporter.Printf(summaryClonedTemplateConstant, report.Cloned)
	reporter.Printf(summaryFetchedTemplateConstant, report.Fetched)
	reporter.Printf(summaryErrorsTemplateConstant, len(report.Errors))
	for _, message := range report.Errors {
		reporter.Printf(summaryErrorLineTemplateConstant, message)
	}
}
