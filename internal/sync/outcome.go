package sync

// Stage identifies a phase of a sync run.
type Stage int

// Run stages in the order they execute.
const (
	StageConfiguration Stage = iota
	StageCredential
	StageDiscovery
	StageExecution
)

// StageOutcome is the decision taken after a stage finishes.
type StageOutcome int

// Supported stage outcomes.
const (
	StageOutcomeContinue StageOutcome = iota
	StageOutcomeSkipProvider
	StageOutcomeSkipGroup
	StageOutcomeRecordTargetFailure
	StageOutcomeAbort
)

var stageOutcomeNames = map[StageOutcome]string{
	StageOutcomeContinue:            "continue",
	StageOutcomeSkipProvider:        "skip_provider",
	StageOutcomeSkipGroup:           "skip_group",
	StageOutcomeRecordTargetFailure: "record_target_failure",
	StageOutcomeAbort:               "abort",
}

func (outcome StageOutcome) String() string {
	if name, known := stageOutcomeNames[outcome]; known {
		return name
	}
	return "unknown"
}

// ClassifyError maps a stage failure onto the decision the run takes.
// A nil error always continues.
func ClassifyError(stage Stage, stageError error) StageOutcome {
	if stageError == nil {
		return StageOutcomeContinue
	}
	switch stage {
	case StageCredential:
		return StageOutcomeSkipProvider
	case StageDiscovery:
		return StageOutcomeSkipGroup
	case StageExecution:
		return StageOutcomeRecordTargetFailure
	default:
		return StageOutcomeAbort
	}
}
