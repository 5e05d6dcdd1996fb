package gitlab_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/ranger/internal/gitlab"
)

const (
	testTokenConstant            = "glpat-test-token"
	testGroupPathConstant        = "team/sub"
	testEncodedGroupPathConstant = "team%2Fsub"
	testProjectTemplateConstant  = `{"id":%d,"name":"%s","path":"%s","path_with_namespace":"team/sub/%s","ssh_url_to_repo":"git@gitlab.example.com:team/sub/%s.git","http_url_to_repo":"https://gitlab.example.com/team/sub/%s.git"}`
)

type recordedRequest struct {
	requestURI   string
	privateToken string
	query        map[string]string
}

type projectPagesServer struct {
	mutex    sync.Mutex
	pages    map[int]string
	fallback string
	status   int
	body     string
	requests []recordedRequest
}

func (server *projectPagesServer) ServeHTTP(responseWriter http.ResponseWriter, request *http.Request) {
	query := map[string]string{}
	for key := range request.URL.Query() {
		query[key] = request.URL.Query().Get(key)
	}

	server.mutex.Lock()
	server.requests = append(server.requests, recordedRequest{
		requestURI:   request.RequestURI,
		privateToken: request.Header.Get("PRIVATE-TOKEN"),
		query:        query,
	})
	server.mutex.Unlock()

	if server.status != 0 {
		responseWriter.WriteHeader(server.status)
		_, _ = fmt.Fprint(responseWriter, server.body)
		return
	}

	pageNumber, _ := strconv.Atoi(request.URL.Query().Get("page"))
	responseWriter.Header().Set("Content-Type", "application/json")
	if payload, exists := server.pages[pageNumber]; exists {
		_, _ = fmt.Fprint(responseWriter, payload)
		return
	}
	if len(server.fallback) > 0 {
		_, _ = fmt.Fprint(responseWriter, server.fallback)
		return
	}
	_, _ = fmt.Fprint(responseWriter, "[]")
}

func projectJSON(identifier int, name string) string {
	return fmt.Sprintf(testProjectTemplateConstant, identifier, name, name, name, name, name)
}

func newTestClient(testInstance *testing.T, baseURL string, maximumPages int) *gitlab.Client {
	client, clientError := gitlab.NewClient(zap.NewNop(), nil, gitlab.ServiceConfiguration{
		BaseURL:      baseURL + "/",
		Token:        testTokenConstant,
		MaximumPages: maximumPages,
	})
	require.NoError(testInstance, clientError)
	return client
}

func TestListGroupProjectsConcatenatesPages(testInstance *testing.T) {
	pagesServer := &projectPagesServer{pages: map[int]string{
		1: "[" + projectJSON(1, "alpha") + "," + projectJSON(2, "beta") + "]",
		2: "[" + projectJSON(3, "gamma") + "]",
	}}
	server := httptest.NewServer(pagesServer)
	defer server.Close()

	projects, listError := newTestClient(testInstance, server.URL, 0).ListGroupProjects(context.Background(), testGroupPathConstant, false)
	require.NoError(testInstance, listError)

	projectNames := make([]string, 0, len(projects))
	for _, project := range projects {
		projectNames = append(projectNames, project.Name)
	}
	require.Equal(testInstance, []string{"alpha", "beta", "gamma"}, projectNames)
	require.Equal(testInstance, "team/sub/alpha", projects[0].PathWithNamespace)
	require.Equal(testInstance, "git@gitlab.example.com:team/sub/alpha.git", projects[0].SSHURLToRepo)

	require.Len(testInstance, pagesServer.requests, 3)
	for requestIndex, recorded := range pagesServer.requests {
		expectedURI := fmt.Sprintf("/api/v4/groups/%s/projects?per_page=100&page=%d", testEncodedGroupPathConstant, requestIndex+1)
		require.Equal(testInstance, expectedURI, recorded.requestURI)
		require.Equal(testInstance, testTokenConstant, recorded.privateToken)
		require.NotContains(testInstance, recorded.query, "include_subgroups")
	}
}

func TestListGroupProjectsRequestsSubgroupsWhenRecursive(testInstance *testing.T) {
	pagesServer := &projectPagesServer{}
	server := httptest.NewServer(pagesServer)
	defer server.Close()

	projects, listError := newTestClient(testInstance, server.URL, 0).ListGroupProjects(context.Background(), testGroupPathConstant, true)
	require.NoError(testInstance, listError)
	require.Empty(testInstance, projects)

	require.Len(testInstance, pagesServer.requests, 1)
	require.Equal(testInstance, "true", pagesServer.requests[0].query["include_subgroups"])
}

func TestListGroupProjectsStopsAtPageLimit(testInstance *testing.T) {
	pagesServer := &projectPagesServer{fallback: "[" + projectJSON(7, "loop") + "]"}
	server := httptest.NewServer(pagesServer)
	defer server.Close()

	projects, listError := newTestClient(testInstance, server.URL, 3).ListGroupProjects(context.Background(), testGroupPathConstant, false)
	require.NoError(testInstance, listError)
	require.Len(testInstance, projects, 3)
	require.Len(testInstance, pagesServer.requests, 3)
}

func TestListGroupProjectsMapsFailures(testInstance *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		verify func(*testing.T, error)
	}{
		{
			name:   "unauthorized_is_authentication_failure",
			status: http.StatusUnauthorized,
			body:   `{"message":"401 Unauthorized"}`,
			verify: func(testInstance *testing.T, listError error) {
				var authenticationError gitlab.AuthenticationError
				require.True(testInstance, errors.As(listError, &authenticationError))
				require.Equal(testInstance, http.StatusUnauthorized, authenticationError.StatusCode)
				var requestError gitlab.RequestError
				require.False(testInstance, errors.As(listError, &requestError))
			},
		},
		{
			name:   "forbidden_is_authentication_failure",
			status: http.StatusForbidden,
			verify: func(testInstance *testing.T, listError error) {
				var authenticationError gitlab.AuthenticationError
				require.True(testInstance, errors.As(listError, &authenticationError))
			},
		},
		{
			name:   "not_found_carries_group_path",
			status: http.StatusNotFound,
			verify: func(testInstance *testing.T, listError error) {
				var notFoundError gitlab.GroupNotFoundError
				require.True(testInstance, errors.As(listError, &notFoundError))
				require.Equal(testInstance, testGroupPathConstant, notFoundError.GroupPath)
			},
		},
		{
			name:   "server_error_carries_status_and_body",
			status: http.StatusBadGateway,
			body:   "upstream unavailable",
			verify: func(testInstance *testing.T, listError error) {
				var requestError gitlab.RequestError
				require.True(testInstance, errors.As(listError, &requestError))
				require.Equal(testInstance, http.StatusBadGateway, requestError.StatusCode)
				require.Equal(testInstance, "upstream unavailable", requestError.Body)
				require.Contains(testInstance, listError.Error(), "HTTP 502")
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			server := httptest.NewServer(&projectPagesServer{status: testCase.status, body: testCase.body})
			defer server.Close()

			projects, listError := newTestClient(testInstance, server.URL, 0).ListGroupProjects(context.Background(), testGroupPathConstant, false)
			require.Error(testInstance, listError)
			require.Nil(testInstance, projects)
			testCase.verify(testInstance, listError)
		})
	}
}

func TestListGroupProjectsMapsMalformedJSONToParseError(testInstance *testing.T) {
	server := httptest.NewServer(&projectPagesServer{pages: map[int]string{1: `{"not":"an array"`}})
	defer server.Close()

	_, listError := newTestClient(testInstance, server.URL, 0).ListGroupProjects(context.Background(), testGroupPathConstant, false)
	var parseError gitlab.ParseError
	require.True(testInstance, errors.As(listError, &parseError))
}

func TestListGroupProjectsFailsWholeGroupOnLaterPage(testInstance *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("page") == "1" {
			_, _ = fmt.Fprint(responseWriter, "["+projectJSON(1, "alpha")+"]")
			return
		}
		responseWriter.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	projects, listError := newTestClient(testInstance, server.URL, 0).ListGroupProjects(context.Background(), testGroupPathConstant, false)
	require.Nil(testInstance, projects)
	var requestError gitlab.RequestError
	require.True(testInstance, errors.As(listError, &requestError))
	require.Equal(testInstance, http.StatusInternalServerError, requestError.StatusCode)
}

type failingHTTPClient struct {
	failure error
}

func (client failingHTTPClient) Do(*http.Request) (*http.Response, error) {
	return nil, client.failure
}

func TestListGroupProjectsMapsTransportFailure(testInstance *testing.T) {
	transportFailure := errors.New("connection refused")
	client, clientError := gitlab.NewClient(zap.NewNop(), failingHTTPClient{failure: transportFailure}, gitlab.ServiceConfiguration{
		BaseURL: "https://gitlab.example.com",
		Token:   testTokenConstant,
	})
	require.NoError(testInstance, clientError)

	_, listError := client.ListGroupProjects(context.Background(), testGroupPathConstant, false)
	var requestError gitlab.RequestError
	require.True(testInstance, errors.As(listError, &requestError))
	require.Zero(testInstance, requestError.StatusCode)
	require.ErrorIs(testInstance, listError, transportFailure)
}

func TestListGroupProjectsAppliesRequestTimeout(testInstance *testing.T) {
	handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		select {
		case <-request.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client, clientError := gitlab.NewClient(zap.NewNop(), nil, gitlab.ServiceConfiguration{
		BaseURL:        server.URL,
		Token:          testTokenConstant,
		RequestTimeout: 50 * time.Millisecond,
	})
	require.NoError(testInstance, clientError)

	_, listError := client.ListGroupProjects(context.Background(), testGroupPathConstant, false)
	var requestError gitlab.RequestError
	require.True(testInstance, errors.As(listError, &requestError))
	require.ErrorIs(testInstance, listError, context.DeadlineExceeded)
}

func TestVerifyToken(testInstance *testing.T) {
	testCases := []struct {
		name             string
		status           int
		body             string
		expectedUsername string
		expectAuthError  bool
	}{
		{name: "valid_token", status: http.StatusOK, body: `{"id":9,"username":"ranger","name":"Ranger"}`, expectedUsername: "ranger"},
		{name: "rejected_token", status: http.StatusUnauthorized, expectAuthError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var requestedPath string
			var requestedToken string
			handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
				requestedPath = request.URL.Path
				requestedToken = request.Header.Get("PRIVATE-TOKEN")
				responseWriter.WriteHeader(testCase.status)
				_, _ = fmt.Fprint(responseWriter, testCase.body)
			})
			server := httptest.NewServer(handler)
			defer server.Close()

			user, verifyError := newTestClient(testInstance, server.URL, 0).VerifyToken(context.Background())
			require.Equal(testInstance, "/api/v4/user", requestedPath)
			require.Equal(testInstance, testTokenConstant, requestedToken)

			if testCase.expectAuthError {
				var authenticationError gitlab.AuthenticationError
				require.True(testInstance, errors.As(verifyError, &authenticationError))
				return
			}
			require.NoError(testInstance, verifyError)
			require.Equal(testInstance, testCase.expectedUsername, user.Username)
		})
	}
}

func TestNewClientValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		configuration gitlab.ServiceConfiguration
		expectedError error
	}{
		{name: "missing_logger", logger: nil, configuration: gitlab.ServiceConfiguration{BaseURL: "https://gitlab.example.com", Token: testTokenConstant}, expectedError: gitlab.ErrLoggerNotConfigured},
		{name: "missing_host", logger: zap.NewNop(), configuration: gitlab.ServiceConfiguration{Token: testTokenConstant}, expectedError: gitlab.ErrBaseURLNotConfigured},
		{name: "missing_token", logger: zap.NewNop(), configuration: gitlab.ServiceConfiguration{BaseURL: "https://gitlab.example.com"}, expectedError: gitlab.ErrTokenNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, clientError := gitlab.NewClient(testCase.logger, nil, testCase.configuration)
			require.ErrorIs(testInstance, clientError, testCase.expectedError)
			require.Nil(testInstance, client)
		})
	}
}

func TestProjectCloneURL(testInstance *testing.T) {
	project := gitlab.Project{SSHURLToRepo: "git@host:a/b.git", HTTPURLToRepo: "https://host/a/b.git"}

	sshProtocol, sshError := gitlab.ParseCloneProtocol("")
	require.NoError(testInstance, sshError)
	require.Equal(testInstance, "git@host:a/b.git", project.CloneURL(sshProtocol))

	httpsProtocol, httpsError := gitlab.ParseCloneProtocol("HTTPS")
	require.NoError(testInstance, httpsError)
	require.Equal(testInstance, "https://host/a/b.git", project.CloneURL(httpsProtocol))

	_, invalidError := gitlab.ParseCloneProtocol("ftp")
	require.Error(testInstance, invalidError)
}
