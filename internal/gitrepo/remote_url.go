package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	schemeSeparatorConstant              = "://"
	scpUserHostSeparatorConstant         = "@"
	scpHostPathSeparatorConstant         = ":"
	pathSeparatorConstant                = "/"
	gitSuffixConstant                    = ".git"
	remoteURLParseErrorTemplateConstant  = "%s: %s"
	invalidRemoteURLMessageConstant      = "invalid remote url"
	unsupportedSchemeMessageConstant     = "unsupported remote scheme"
	missingOwnerMessageConstant          = "remote path must name owner/repository"
	repositoryIdentifierTemplateConstant = "%s/%s"
)

// RemoteProtocol is the transport a remote uses.
type RemoteProtocol string

// Transports that can address a GitHub repository.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
)

// RemoteURL is the repository a remote points at. Credentials and ports are discarded.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// Identifier returns the owner/repository pair gh accepts for --repo.
func (remote RemoteURL) Identifier() string {
	return fmt.Sprintf(repositoryIdentifierTemplateConstant, remote.Owner, remote.Repository)
}

// ParseRemoteURL accepts URL remotes (ssh, https, http) and scp-like remotes such as git@github.com:owner/review.git.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}
	if strings.Contains(trimmedRemote, schemeSeparatorConstant) {
		return parseURLRemote(trimmedRemote)
	}
	return parseSCPRemote(trimmedRemote)
}

func parseURLRemote(remote string) (RemoteURL, error) {
	parsedURL, parseError := url.Parse(remote)
	if parseError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	var protocol RemoteProtocol
	switch strings.ToLower(parsedURL.Scheme) {
	case string(RemoteProtocolSSH):
		protocol = RemoteProtocolSSH
	case string(RemoteProtocolHTTPS):
		protocol = RemoteProtocolHTTPS
	case string(RemoteProtocolHTTP):
		protocol = RemoteProtocolHTTP
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: unsupportedSchemeMessageConstant}
	}

	host := parsedURL.Hostname()
	if len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	return buildRemote(protocol, host, parsedURL.Path, remote)
}

func parseSCPRemote(remote string) (RemoteURL, error) {
	hostPart, path, found := strings.Cut(remote, scpHostPathSeparatorConstant)
	if !found {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	if userSeparatorIndex := strings.LastIndex(hostPart, scpUserHostSeparatorConstant); userSeparatorIndex >= 0 {
		hostPart = hostPart[userSeparatorIndex+1:]
	}
	if len(hostPart) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	return buildRemote(RemoteProtocolSSH, hostPart, path, remote)
}

func buildRemote(protocol RemoteProtocol, host string, path string, input string) (RemoteURL, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != 2 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: missingOwnerMessageConstant}
	}
	owner := segments[0]
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: missingOwnerMessageConstant}
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}
