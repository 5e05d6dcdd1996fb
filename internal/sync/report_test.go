package sync_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/temirov/ranger/internal/shared"
	"github.com/temirov/ranger/internal/sync"
)

func TestSyncReportErrCombinesFailures(testInstance *testing.T) {
	require.NoError(testInstance, sync.SyncReport{Total: 2, Cloned: 2}.Err())

	firstCause := errors.New("exit status 128")
	secondCause := errors.New("could not resolve host")
	report := sync.SyncReport{
		Failures: []sync.TargetFailure{
			{Target: sync.RepositoryTarget{Name: "alpha"}, Action: sync.TargetActionClone, Cause: firstCause},
			{Target: sync.RepositoryTarget{Name: "beta"}, Action: sync.TargetActionFetch, Cause: secondCause},
		},
	}

	combined := report.Err()
	require.Len(testInstance, multierr.Errors(combined), 2)
	require.ErrorIs(testInstance, combined, firstCause)
	require.ErrorIs(testInstance, combined, secondCause)
	require.Contains(testInstance, combined.Error(), "Failed to clone alpha: exit status 128")
	require.Contains(testInstance, combined.Error(), "Failed to fetch beta: could not resolve host")
}

func TestWritePreview(testInstance *testing.T) {
	output := &bytes.Buffer{}
	sync.WritePreview(shared.NewWriterReporter(output), sync.PreviewReport{
		Total:   2,
		ToClone: []sync.RepositoryTarget{{URL: "git@host:a/new.git", Name: "new", LocalPath: "/workspace/new"}},
		ToFetch: []sync.RepositoryTarget{{URL: "git@host:a/old.git", Name: "old", LocalPath: "/workspace/old", Exists: true}},
	})

	expected := "=== Dry Run ===\n" +
		"\nWould clone (1):\n  new -> /workspace/new\n" +
		"\nWould fetch (1):\n  old -> /workspace/old\n" +
		"\nTotal: 2 repositories\n" +
		"No changes made. Run without --dry-run to execute.\n"
	require.Equal(testInstance, expected, output.String())
}

func TestWriteSummary(testInstance *testing.T) {
	output := &bytes.Buffer{}
	sync.WriteSummary(shared.NewWriterReporter(output), sync.SyncReport{
		Total:   3,
		Cloned:  1,
		Fetched: 1,
		Errors:  []string{"Failed to clone second: exit status 128"},
	})

	require.Equal(testInstance,
		"\n=== Sync Summary ===\nTotal:   3\nCloned:  1\nFetched: 1\nErrors:  1\n  - Failed to clone second: exit status 128\n",
		output.String(),
	)
}

func TestStatusAndListing(testInstance *testing.T) {
	targets := []sync.RepositoryTarget{
		{URL: "git@host:a/new.git", Name: "new", LocalPath: "/workspace/new"},
		{URL: "git@host:a/old.git", Name: "old", LocalPath: "/workspace/old", Exists: true},
	}

	report := sync.Status(targets)
	require.Equal(testInstance, 2, report.Total)
	require.Equal(testInstance, 1, report.Cloned)
	require.Equal(testInstance, 1, report.NotCloned)

	statusOutput := &bytes.Buffer{}
	sync.WriteStatus(shared.NewWriterReporter(statusOutput), report)
	require.Contains(testInstance, statusOutput.String(), "✗ new - not cloned (/workspace/new)")
	require.Contains(testInstance, statusOutput.String(), "✓ old - cloned (/workspace/old)")

	listingOutput := &bytes.Buffer{}
	sync.WriteListing(shared.NewWriterReporter(listingOutput), targets)
	require.Contains(testInstance, listingOutput.String(), "new\n  URL: git@host:a/new.git\n  Local Path: /workspace/new\n")
	require.Contains(testInstance, listingOutput.String(), "Total: 2 repositories")

	emptyOutput := &bytes.Buffer{}
	sync.WriteListing(shared.NewWriterReporter(emptyOutput), nil)
	require.Equal(testInstance, "No repositories configured.\n", emptyOutput.String())
}
