package sync

import (
	"github.com/temirov/ranger/internal/shared"
)

const (
	statusHeaderConstant             = "\n=== Repository Status ===\n"
	statusTotalTemplateConstant      = "Total repositories: %d\n"
	statusClonedTemplateConstant     = "Cloned: %d\n"
	statusNotClonedTemplateConstant  = "Not cloned: %d\n"
	statusLineTemplateConstant       = "%s %s - %s (%s)\n"
	statusClonedIconConstant         = "✓"
	statusNotClonedIconConstant      = "✗"
	statusClonedLabelConstant        = "cloned"
	statusNotClonedLabelConstant     = "not cloned"
	noRepositoriesMessageConstant    = "No repositories configured.\n"
	listingHeaderConstant            = "\n=== Configured Repositories ===\n\n"
	listingNameTemplateConstant      = "%s\n"
	listingURLTemplateConstant       = "  URL: %s\n"
	listingLocalPathTemplateConstant = "  Local Path: %s\n\n"
	listingTotalTemplateConstant     = "Total: %d repositories\n"
	blankLineConstant                = "\n"
)

// StatusReport tells which targets are already cloned.
type StatusReport struct {
	Total     int
	Cloned    int
	NotCloned int
	Targets   []RepositoryTarget
}

// Status summarizes the cloned state of targets.
func Status(targets []RepositoryTarget) StatusReport {
	report := StatusReport{Total: len(targets), Targets: targets}
	for _, target := range targets {
		if target.Exists {
			report.Cloned++
			continue
		}
		report.NotCloned++
	}
	return report
}

// WriteStatus prints one line per target with its cloned state.
func WriteStatus(reporter shared.Reporter, report StatusReport) {
	reporter.Printf(statusHeaderConstant)
	reporter.Printf(statusTotalTemplateConstant, report.Total)
	reporter.Printf(statusClonedTemplateConstant, report.Cloned)
	reporter.Printf(statusNotClonedTemplateConstant, report.NotCloned)
	reporter.Printf(blankLineConstant)

	if len(report.Targets) == 0 {
		reporter.Printf(noRepositoriesMessageConstant)
		return
	}

	for _, target := range report.Targets {
		icon, label := statusNotClonedIconConstant, statusNotClonedLabelConstant
		if target.Exists {
			icon, label = statusClonedIconConstant, statusClonedLabelConstant
		}
		reporter.Printf(statusLineTemplateConstant, icon, target.Name, label, target.LocalPath)
	}
	reporter.Printf(blankLineConstant)
}

// WriteListing prints every target with its URL and local path.
func WriteListing(reporter shared.Reporter, targets []RepositoryTarget) {
	if len(targets) == 0 {
		reporter.Printf(noRepositoriesMessageConstant)
		return
	}

	reporter.Printf(listingHeaderConstant)
	for _, target := range targets {
		reporter.Printf(listingNameTemplateConstant, target.Name)
		reporter.Printf(listingURLTemplateConstant, target.URL)
		reporter.Printf(listingLocalPathTemplateConstant, target.LocalPath)
	}
	reporter.Printf(listingTotalTemplateConstant, len(targets))
}
