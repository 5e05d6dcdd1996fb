// Package gitlab discovers projects in GitLab groups through the REST v4 API.
//
// Client pages through a group's project listing, optionally including
// subgroups, and maps HTTP failures onto typed errors (AuthenticationError,
// GroupNotFoundError, RequestError, ParseError) so callers can decide whether
// to skip a group or a whole provider.
package gitlab
