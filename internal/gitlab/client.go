package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the number of projects requested per page.
	DefaultPageSize = 100
	// DefaultMaximumPages bounds pagination against servers that never return an empty page.
	DefaultMaximumPages = 100
	// DefaultRequestTimeout bounds each individual HTTP request.
	DefaultRequestTimeout = 30 * time.Second

	privateTokenHeaderConstant          = "PRIVATE-TOKEN"
	acceptHeaderConstant                = "Accept"
	jsonContentTypeConstant             = "application/json"
	groupProjectsPathTemplateConstant   = "%s/api/v4/groups/%s/projects?per_page=%d&page=%d"
	includeSubgroupsQuerySuffixConstant = "&include_subgroups=true"
	currentUserPathTemplateConstant     = "%s/api/v4/user"
	hostTrailingSeparatorConstant       = "/"
	maximumErrorBodyBytesConstant       = 64 * 1024
	loggerNotConfiguredMessageConstant  = "gitlab client logger not configured"
	baseURLNotConfiguredMessageConstant = "gitlab host not configured"
	tokenNotConfiguredMessageConstant   = "gitlab token not configured"
	requestBuildErrorTemplateConstant   = "unable to build gitlab request: %w"
	pageFetchedLogMessageConstant       = "gitlab projects page fetched"
	pageLimitReachedLogMessageConstant  = "gitlab pagination limit reached"
	groupDiscoveredLogMessageConstant   = "gitlab group discovered"
	logFieldGroupConstant               = "group"
	logFieldPageConstant                = "page"
	logFieldProjectCountConstant        = "project_count"
	logFieldRecursiveConstant           = "recursive"
)

// ErrLoggerNotConfigured indicates the client was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrBaseURLNotConfigured indicates the client was constructed without a host.
var ErrBaseURLNotConfigured = errors.New(baseURLNotConfiguredMessageConstant)

// ErrTokenNotConfigured indicates the client was constructed without a token.
var ErrTokenNotConfigured = errors.New(tokenNotConfiguredMessageConstant)

// HTTPClient executes HTTP requests.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ServiceConfiguration describes how to reach a GitLab instance.
type ServiceConfiguration struct {
	BaseURL        string
	Token          string
	PageSize       int
	MaximumPages   int
	RequestTimeout time.Duration
}

// Client lists group projects and verifies tokens against a GitLab instance.
// Requests are issued sequentially and never retried.
type Client struct {
	logger        *zap.Logger
	httpClient    HTTPClient
	configuration ServiceConfiguration
}

// NewClient constructs a Client. A nil httpClient selects http.DefaultClient; zero
// pagination and timeout values select the package defaults.
func NewClient(logger *zap.Logger, httpClient HTTPClient, configuration ServiceConfiguration) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	configuration.BaseURL = strings.TrimRight(strings.TrimSpace(configuration.BaseURL), hostTrailingSeparatorConstant)
	if len(configuration.BaseURL) == 0 {
		return nil, ErrBaseURLNotConfigured
	}
	if len(strings.TrimSpace(configuration.Token)) == 0 {
		return nil, ErrTokenNotConfigured
	}
	if configuration.PageSize <= 0 {
		configuration.PageSize = DefaultPageSize
	}
	if configuration.MaximumPages <= 0 {
		configuration.MaximumPages = DefaultMaximumPages
	}
	if configuration.RequestTimeout <= 0 {
		configuration.RequestTimeout = DefaultRequestTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{logger: logger, httpClient: httpClient, configuration: configuration}, nil
}

// ListGroupProjects returns every project of groupPath, following pagination until an
// empty page or the configured page limit. When recursive is set, projects of nested
// subgroups are included. Any failed page fails the whole listing.
func (client *Client) ListGroupProjects(executionContext context.Context, groupPath string, recursive bool) ([]Project, error) {
	encodedGroupPath := url.PathEscape(groupPath)
	projects := make([]Project, 0)

	for pageNumber := 1; pageNumber <= client.configuration.MaximumPages; pageNumber++ {
		requestURL := fmt.Sprintf(groupProjectsPathTemplateConstant, client.configuration.BaseURL, encodedGroupPath, client.configuration.PageSize, pageNumber)
		if recursive {
			requestURL += includeSubgroupsQuerySuffixConstant
		}

		var pageProjects []Project
		if requestError := client.getJSON(executionContext, requestURL, groupPath, &pageProjects); requestError != nil {
			return nil, requestError
		}

		client.logger.Debug(
			pageFetchedLogMessageConstant,
			zap.String(logFieldGroupConstant, groupPath),
			zap.Int(logFieldPageConstant, pageNumber),
			zap.Int(logFieldProjectCountConstant, len(pageProjects)),
		)

		if len(pageProjects) == 0 {
			break
		}
		projects = append(projects, pageProjects...)

		if pageNumber == client.configuration.MaximumPages {
			client.logger.Debug(pageLimitReachedLogMessageConstant, zap.String(logFieldGroupConstant, groupPath), zap.Int(logFieldPageConstant, pageNumber))
		}
	}

	client.logger.Debug(
		groupDiscoveredLogMessageConstant,
		zap.String(logFieldGroupConstant, groupPath),
		zap.Bool(logFieldRecursiveConstant, recursive),
		zap.Int(logFieldProjectCountConstant, len(projects)),
	)
	return projects, nil
}

// VerifyToken checks the configured token by requesting the current user.
func (client *Client) VerifyToken(executionContext context.Context) (User, error) {
	var user User
	requestURL := fmt.Sprintf(currentUserPathTemplateConstant, client.configuration.BaseURL)
	if requestError := client.getJSON(executionContext, requestURL, "", &user); requestError != nil {
		return User{}, requestError
	}
	return user, nil
}

func (client *Client) getJSON(executionContext context.Context, requestURL string, groupPath string, target any) error {
	requestContext, cancel := context.WithTimeout(executionContext, client.configuration.RequestTimeout)
	defer cancel()

	request, buildError := http.NewRequestWithContext(requestContext, http.MethodGet, requestURL, nil)
	if buildError != nil {
		return RequestError{Cause: fmt.Errorf(requestBuildErrorTemplateConstant, buildError)}
	}
	request.Header.Set(privateTokenHeaderConstant, client.configuration.Token)
	request.Header.Set(acceptHeaderConstant, jsonContentTypeConstant)

	response, transportError := client.httpClient.Do(request)
	if transportError != nil {
		return RequestError{Cause: transportError}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(response.Body, maximumErrorBodyBytesConstant))
		return classifyStatus(response.StatusCode, strings.TrimSpace(string(bodyBytes)), groupPath)
	}

	if decodeError := json.NewDecoder(response.Body).Decode(target); decodeError != nil {
		return ParseError{Cause: decodeError}
	}
	return nil
}

