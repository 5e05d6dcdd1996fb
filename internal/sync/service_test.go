package sync_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/gitops"
	"github.com/temirov/ranger/internal/manifest"
	"github.com/temirov/ranger/internal/shared"
	"github.com/temirov/ranger/internal/sync"
)

type recordedOperation struct {
	action string
	url    string
	path   string
}

type recordingOperations struct {
	operations []recordedOperation
	failures   map[string]error
}

func (recorder *recordingOperations) Clone(_ context.Context, repositoryURL string, destinationPath string) error {
	recorder.operations = append(recorder.operations, recordedOperation{action: "clone", url: repositoryURL, path: destinationPath})
	return recorder.failures[destinationPath]
}

func (recorder *recordingOperations) FetchAll(_ context.Context, repositoryPath string) error {
	recorder.operations = append(recorder.operations, recordedOperation{action: "fetch", path: repositoryPath})
	return recorder.failures[repositoryPath]
}

func newTestService(testInstance *testing.T, operations sync.RepositoryOperations, reporter shared.Reporter) *sync.Service {
	testInstance.Helper()
	service, serviceError := sync.NewService(sync.ServiceDependencies{Logger: zap.NewNop(), Operations: operations, Reporter: reporter})
	require.NoError(testInstance, serviceError)
	return service
}

func threeTargets() []sync.RepositoryTarget {
	return []sync.RepositoryTarget{
		{URL: "https://example.com/a/first.git", Name: "first", LocalPath: "/workspace/first"},
		{URL: "https://example.com/a/second.git", Name: "second", LocalPath: "/workspace/second"},
		{URL: "https://example.com/a/third.git", Name: "third", LocalPath: "/workspace/third", Exists: true},
	}
}

func TestServicePreviewClassifiesByGitDirectory(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	markCloned(testInstance, fileSystem, "/workspace/cloned")
	require.NoError(testInstance, fileSystem.MkdirAll("/workspace/plain-directory", 0o755))

	lister := &stubProjectLister{}
	workspaceManifest := gitLabManifest()
	workspaceManifest.Repositories = []manifest.RepositoryConfiguration{
		{URL: "https://example.com/a/cloned.git"},
		{URL: "https://example.com/a/plain-directory.git"},
		{URL: "https://example.com/a/missing.git"},
	}
	builder := newBuilder(testInstance, sync.TargetBuilderDependencies{FileSystem: fileSystem, ProjectListerFactory: stubListerFactory(lister)})
	targetSet, buildError := builder.Build(context.Background(), workspaceManifest, testBaseDirectoryConstant, "")
	require.NoError(testInstance, buildError)

	recorder := &recordingOperations{}
	preview := newTestService(testInstance, recorder, nil).Preview(targetSet.Targets)

	require.Equal(testInstance, 3, preview.Total)
	require.Len(testInstance, preview.ToFetch, 1)
	require.Equal(testInstance, "cloned", preview.ToFetch[0].Name)
	require.Len(testInstance, preview.ToClone, 2)
	require.Equal(testInstance, "plain-directory", preview.ToClone[0].Name)
	require.Equal(testInstance, "missing", preview.ToClone[1].Name)
	require.Empty(testInstance, recorder.operations)
}

func TestServiceExecuteContinuesAfterFailure(testInstance *testing.T) {
	output := &bytes.Buffer{}
	recorder := &recordingOperations{failures: map[string]error{"/workspace/second": errors.New("git clone failed: exit status 128")}}
	service := newTestService(testInstance, recorder, shared.NewWriterReporter(output))

	report := service.Execute(context.Background(), threeTargets())

	require.Equal(testInstance, []recordedOperation{
		{action: "clone", url: "https://example.com/a/first.git", path: "/workspace/first"},
		{action: "clone", url: "https://example.com/a/second.git", path: "/workspace/second"},
		{action: "fetch", path: "/workspace/third"},
	}, recorder.operations)

	require.Equal(testInstance, 3, report.Total)
	require.Equal(testInstance, 2, report.ToClone)
	require.Equal(testInstance, 1, report.ToFetch)
	require.Equal(testInstance, 1, report.Cloned)
	require.Equal(testInstance, 1, report.Fetched)
	require.Len(testInstance, report.Errors, 1)
	require.Contains(testInstance, report.Errors[0], "second")
	require.Equal(testInstance, "Failed to clone second: git clone failed: exit status 128", report.Errors[0])
	require.Equal(testInstance, report.Total, report.Cloned+report.Fetched+len(report.Errors))
	require.True(testInstance, report.HasErrors())

	require.Contains(testInstance, output.String(), "CLONED: first (/workspace/first)")
	require.Contains(testInstance, output.String(), "FAILED: Failed to clone second")
	require.Contains(testInstance, output.String(), "FETCHED: third (/workspace/third)")
}

func TestServiceExecuteRecordsFetchFailures(testInstance *testing.T) {
	fetchError := errors.New("git fetch failed: network unreachable")
	recorder := &recordingOperations{failures: map[string]error{"/workspace/third": fetchError}}

	report := newTestService(testInstance, recorder, nil).Execute(context.Background(), threeTargets())

	require.Equal(testInstance, 2, report.Cloned)
	require.Equal(testInstance, 0, report.Fetched)
	require.Equal(testInstance, []string{"Failed to fetch third: git fetch failed: network unreachable"}, report.Errors)
	require.Len(testInstance, report.Failures, 1)
	require.Equal(testInstance, sync.TargetActionFetch, report.Failures[0].Action)
	require.ErrorIs(testInstance, report.Err(), fetchError)
}

func TestServiceExecuteRecordsRemainingTargetsAfterCancellation(testInstance *testing.T) {
	executionContext, cancel := context.WithCancel(context.Background())
	cancel()
	recorder := &recordingOperations{}

	report := newTestService(testInstance, recorder, nil).Execute(executionContext, threeTargets())

	require.Empty(testInstance, recorder.operations)
	require.Len(testInstance, report.Errors, 3)
	require.Equal(testInstance, report.Total, report.Cloned+report.Fetched+len(report.Errors))
	require.ErrorIs(testInstance, report.Err(), context.Canceled)
}

func TestServiceExecuteWithGitExecutor(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	gitExecutor := &recordingGitExecutor{failingSubstring: "second"}
	operations, operationsError := gitops.NewExecutor(gitExecutor, fileSystem)
	require.NoError(testInstance, operationsError)

	report := newTestService(testInstance, operations, nil).Execute(context.Background(), threeTargets())

	require.Equal(testInstance, [][]string{
		{"clone", "https://example.com/a/first.git", "/workspace/first"},
		{"clone", "https://example.com/a/second.git", "/workspace/second"},
		{"-C", "/workspace/third", "fetch", "--all"},
	}, gitExecutor.recordedCommands)
	require.Len(testInstance, report.Errors, 1)
	require.Contains(testInstance, report.Errors[0], "second")
	require.Contains(testInstance, report.Errors[0], "fatal: repository not found")

	parentExists, existsError := afero.DirExists(fileSystem, filepath.Dir("/workspace/first"))
	require.NoError(testInstance, existsError)
	require.True(testInstance, parentExists)
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	_, loggerError := sync.NewService(sync.ServiceDependencies{Operations: &recordingOperations{}})
	require.ErrorIs(testInstance, loggerError, sync.ErrServiceLoggerNotConfigured)

	_, operationsError := sync.NewService(sync.ServiceDependencies{Logger: zap.NewNop()})
	require.ErrorIs(testInstance, operationsError, sync.ErrRepositoryOperationsNotConfigured)
}
