package gitlab

import (
	"fmt"
	"strings"
)

const (
	cloneProtocolSSHConstant                 = "ssh"
	cloneProtocolHTTPSConstant               = "https"
	unsupportedCloneProtocolTemplateConstant = "unsupported clone protocol %q (expected ssh or https)"
)

// Project is the subset of the GitLab project representation used for synchronization.
type Project struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Path              string `json:"path"`
	PathWithNamespace string `json:"path_with_namespace"`
	SSHURLToRepo      string `json:"ssh_url_to_repo"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
}

// User is the subset of the authenticated user representation returned by VerifyToken.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// CloneProtocol selects which project URL is used for cloning.
type CloneProtocol string

// Supported clone protocols.
const (
	CloneProtocolSSH   CloneProtocol = CloneProtocol(cloneProtocolSSHConstant)
	CloneProtocolHTTPS CloneProtocol = CloneProtocol(cloneProtocolHTTPSConstant)
)

// ParseCloneProtocol normalizes a configured protocol name. Empty selects ssh.
func ParseCloneProtocol(rawProtocol string) (CloneProtocol, error) {
	switch CloneProtocol(strings.ToLower(strings.TrimSpace(rawProtocol))) {
	case "", CloneProtocolSSH:
		return CloneProtocolSSH, nil
	case CloneProtocolHTTPS:
		return CloneProtocolHTTPS, nil
	default:
		return "", fmt.Errorf(unsupportedCloneProtocolTemplateConstant, rawProtocol)
	}
}

// CloneURL returns the project URL for the requested protocol.
func (project Project) CloneURL(protocol CloneProtocol) string {
	if protocol == CloneProtocolHTTPS {
		return project.HTTPURLToRepo
	}
	return project.SSHURLToRepo
}
