package sync

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/shared"
)

const (
	serviceLoggerRequiredMessageConstant     = "sync service logger not configured"
	serviceOperationsRequiredMessageConstant = "sync service repository operations not configured"
	clonedLineTemplateConstant               = "CLONED: %s (%s)\n"
	fetchedLineTemplateConstant              = "FETCHED: %s (%s)\n"
	failedLineTemplateConstant               = "FAILED: %s\n"
	targetSucceededLogMessageConstant        = "repository synchronized"
	targetFailedLogMessageConstant           = "repository synchronization failed"
	syncFinishedLogMessageConstant           = "sync finished"
	logFieldRepositoryConstant               = "repository"
	logFieldPathConstant                     = "path"
	logFieldActionConstant                   = "action"
	logFieldTotalConstant                    = "total"
	logFieldClonedConstant                   = "cloned"
	logFieldFetchedConstant                  = "fetched"
	logFieldErrorCountConstant               = "errors"
)

// ErrServiceLoggerNotConfigured indicates the service was constructed without a logger.
var ErrServiceLoggerNotConfigured = errors.New(serviceLoggerRequiredMessageConstant)

// ErrRepositoryOperationsNotConfigured indicates the service cannot run git.
var ErrRepositoryOperationsNotConfigured = errors.New(serviceOperationsRequiredMessageConstant)

// RepositoryOperations performs the git side of a sync.
type RepositoryOperations interface {
	Clone(executionContext context.Context, repositoryURL string, destinationPath string) error
	FetchAll(executionContext context.Context, repositoryPath string) error
}

// ServiceDependencies lists the collaborators of a Service.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Operations RepositoryOperations
	Reporter   shared.Reporter
}

// Service previews and executes repository targets.
type Service struct {
	logger     *zap.Logger
	operations RepositoryOperations
	reporter   shared.Reporter
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrServiceLoggerNotConfigured
	}
	if dependencies.Operations == nil {
		return nil, ErrRepositoryOperationsNotConfigured
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewDiscardReporter()
	}
	return &Service{logger: dependencies.Logger, operations: dependencies.Operations, reporter: reporter}, nil
}

// Preview classifies targets by the presence of their .git directory. It has no side effects.
func (service *Service) Preview(targets []RepositoryTarget) PreviewReport {
	report := PreviewReport{Total: len(targets)}
	for _, target := range targets {
		if target.Action() == TargetActionFetch {
			report.ToFetch = append(report.ToFetch, target)
			continue
		}
		report.ToClone = append(report.ToClone, target)
	}
	return report
}

// Execute clones missing targets and fetches existing ones, one at a time and in
// order. A failing target is recorded and the run moves on to the next one.
func (service *Service) Execute(executionContext context.Context, targets []RepositoryTarget) SyncReport {
	report := SyncReport{Total: len(targets)}
	for _, target := range targets {
		if target.Action() == TargetActionFetch {
			report.ToFetch++
		} else {
			report.ToClone++
		}
	}

	for _, target := range targets {
		action := target.Action()
		operationError := executionContext.Err()
		if operationError == nil {
			operationError = service.apply(executionContext, target, action)
		}

		if ClassifyError(StageExecution, operationError) == StageOutcomeRecordTargetFailure {
			failure := TargetFailure{Target: target, Action: action, Cause: operationError}
			report.recordFailure(failure)
			service.logger.Warn(
				targetFailedLogMessageConstant,
				zap.String(logFieldRepositoryConstant, target.Name),
				zap.String(logFieldPathConstant, target.LocalPath),
				zap.String(logFieldActionConstant, string(action)),
				zap.Error(operationError),
			)
			service.reporter.Printf(failedLineTemplateConstant, failure.Error())
			continue
		}

		service.logger.Info(
			targetSucceededLogMessageConstant,
			zap.String(logFieldRepositoryConstant, target.Name),
			zap.String(logFieldPathConstant, target.LocalPath),
			zap.String(logFieldActionConstant, string(action)),
		)
		if action == TargetActionFetch {
			report.Fetched++
			service.reporter.Printf(fetchedLineTemplateConstant, target.Name, target.LocalPath)
		} else {
			report.Cloned++
			service.reporter.Printf(clonedLineTemplateConstant, target.Name, target.LocalPath)
		}
	}

	service.logger.Info(
		syncFinishedLogMessageConstant,
		zap.Int(logFieldTotalConstant, report.Total),
		zap.Int(logFieldClonedConstant, report.Cloned),
		zap.Int(logFieldFetchedConstant, report.Fetched),
		zap.Int(logFieldErrorCountConstant, len(report.Errors)),
	)
	return report
}

func (service *Service) apply(executionContext context.Context, target RepositoryTarget, action TargetAction) error {
	if action == TargetActionFetch {
		return service.operations.FetchAll(executionContext, target.LocalPath)
	}
	return service.operations.Clone(executionContext, target.URL, target.LocalPath)
}
