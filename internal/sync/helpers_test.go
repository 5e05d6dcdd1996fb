package sync_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ranger/internal/execshell"
)

const (
	testBaseDirectoryConstant   = "/workspace"
	testManifestPathConstant    = "/workspace/ranger.yaml"
	testTokenVariableConstant   = "GITLAB_TOKEN"
	testTokenValueConstant      = "glpat-test-token"
	testGroupPathConstant       = "team/sub"
	testStandaloneURLConstant   = "git@github.com:example/not-yet-cloned.git"
	testProjectsPathConstant    = "/api/v4/groups/team%2Fsub/projects"
	testUserPathConstant        = "/api/v4/user"
	testProjectsPayloadConstant = `[
  {"id":1,"name":"alpha","path":"alpha","path_with_namespace":"team/sub/alpha","ssh_url_to_repo":"git@gitlab.example.com:team/sub/alpha.git","http_url_to_repo":"https://gitlab.example.com/team/sub/alpha.git"},
  {"id":2,"name":"beta","path":"beta","path_with_namespace":"team/sub/subgrp/beta","ssh_url_to_repo":"git@gitlab.example.com:team/sub/subgrp/beta.git","http_url_to_repo":"https://gitlab.example.com/team/sub/subgrp/beta.git"}
]`
	testManifestTemplateConstant = `providers:
  gitlab:
    host: "%s"
    token: "${GITLAB_TOKEN}"
groups:
  gitlab:
    - name: "team/sub"
      local_dir: "out"
      recursive: true
repos:
  - url: "git@github.com:example/not-yet-cloned.git"
`
)

// newGitLabServer serves one page of team/sub projects, an empty second page and the
// authenticated user. Requests without the expected token are rejected with 401.
func newGitLabServer(testInstance *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.Header.Get("PRIVATE-TOKEN") != testTokenValueConstant {
			responseWriter.WriteHeader(http.StatusUnauthorized)
			_, _ = fmt.Fprint(responseWriter, `{"message":"401 Unauthorized"}`)
			return
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		switch {
		case request.URL.EscapedPath() == testProjectsPathConstant && request.URL.Query().Get("page") == "1":
			_, _ = fmt.Fprint(responseWriter, testProjectsPayloadConstant)
		case request.URL.EscapedPath() == testProjectsPathConstant:
			_, _ = fmt.Fprint(responseWriter, "[]")
		case request.URL.Path == testUserPathConstant:
			_, _ = fmt.Fprint(responseWriter, `{"id":7,"username":"ranger","name":"Ranger"}`)
		default:
			responseWriter.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(responseWriter, `{"message":"404 Group Not Found"}`)
		}
	}))
	testInstance.Cleanup(server.Close)
	return server
}

func writeTestManifest(testInstance *testing.T, fileSystem afero.Fs, host string) {
	testInstance.Helper()
	content := fmt.Sprintf(testManifestTemplateConstant, host)
	require.NoError(testInstance, afero.WriteFile(fileSystem, testManifestPathConstant, []byte(content), 0o644))
}

func environmentWithToken(key string) (string, bool) {
	if key == testTokenVariableConstant {
		return testTokenValueConstant, true
	}
	return "", false
}

func emptyEnvironment(string) (string, bool) {
	return "", false
}

func markCloned(testInstance *testing.T, fileSystem afero.Fs, repositoryPath string) {
	testInstance.Helper()
	require.NoError(testInstance, fileSystem.MkdirAll(repositoryPath+"/.git", 0o755))
}

type recordingGitExecutor struct {
	recordedCommands [][]string
	failingSubstring string
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details.Arguments)
	joinedArguments := strings.Join(details.Arguments, " ")
	if len(executor.failingSubstring) > 0 && strings.Contains(joinedArguments, executor.failingSubstring) {
		result := execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: repository not found"}
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  result,
		}
	}
	return execshell.ExecutionResult{}, nil
}
