package gitrepo

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	sshProtocolPrefixConstant            = "ssh://"
	httpsProtocolPrefixConstant          = "https://"
	httpProtocolPrefixConstant           = "http://"
	fileProtocolPrefixConstant           = "file://"
	sshUserDelimiterConstant             = "@"
	sshPathDelimiterConstant             = ":"
	pathSeparatorConstant                = "/"
	windowsPathSeparatorConstant         = "\\"
	querySeparatorConstant               = "?"
	fragmentSeparatorConstant            = "#"
	gitSuffixConstant                    = ".git"
	currentDirectoryNameConstant         = "."
	parentDirectoryNameConstant          = ".."
	remoteURLParseErrorTemplateConstant  = "%s: %s"
	requiredValueMessageConstant         = "value required"
	invalidRemoteURLMessageConstant      = "invalid remote url"
	missingRepositoryNameMessageConstant = "remote url does not name a repository"
	unsafeDirectoryNameMessageConstant   = "derived directory name is not filesystem safe"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolFile  RemoteProtocol = RemoteProtocol("file")
)

// RemoteURL represents a structured git remote location.
type RemoteURL struct {
	Protocol RemoteProtocol
	Host     string
	Path     string
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

// ParseRemoteURL converts a textual remote into a structured representation.
// Accepted shapes are http(s)://, ssh://, scp-like user@host:path, file://, and local paths.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	lowercaseRemote := strings.ToLower(trimmedRemote)
	switch {
	case strings.HasPrefix(lowercaseRemote, httpsProtocolPrefixConstant):
		return parseHierarchicalRemote(RemoteProtocolHTTPS, trimmedRemote[len(httpsProtocolPrefixConstant):], remote)
	case strings.HasPrefix(lowercaseRemote, httpProtocolPrefixConstant):
		return parseHierarchicalRemote(RemoteProtocolHTTP, trimmedRemote[len(httpProtocolPrefixConstant):], remote)
	case strings.HasPrefix(lowercaseRemote, sshProtocolPrefixConstant):
		return parseHierarchicalRemote(RemoteProtocolSSH, trimmedRemote[len(sshProtocolPrefixConstant):], remote)
	case strings.HasPrefix(lowercaseRemote, fileProtocolPrefixConstant):
		return RemoteURL{Protocol: RemoteProtocolFile, Path: trimmedRemote[len(fileProtocolPrefixConstant):]}, nil
	case isScpLikeRemote(trimmedRemote):
		return parseScpLikeRemote(trimmedRemote, remote)
	default:
		return RemoteURL{Protocol: RemoteProtocolFile, Path: trimmedRemote}, nil
	}
}

// RepositoryName returns the final path segment without a trailing .git suffix.
func (remote RemoteURL) RepositoryName() string {
	normalizedPath := strings.ReplaceAll(remote.Path, windowsPathSeparatorConstant, pathSeparatorConstant)
	normalizedPath = strings.TrimRight(normalizedPath, pathSeparatorConstant)
	lastSeparatorIndex := strings.LastIndex(normalizedPath, pathSeparatorConstant)
	lastSegment := normalizedPath[lastSeparatorIndex+1:]
	if strings.HasSuffix(strings.ToLower(lastSegment), gitSuffixConstant) {
		lastSegment = lastSegment[:len(lastSegment)-len(gitSuffixConstant)]
	}
	return strings.TrimSpace(lastSegment)
}

// LocalDirectoryName derives the working directory name for a repository from its remote.
func LocalDirectoryName(remote string) (string, error) {
	parsedRemote, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return "", parseError
	}

	repositoryName := parsedRemote.RepositoryName()
	if len(repositoryName) == 0 {
		return "", RemoteURLParseError{Input: remote, Message: missingRepositoryNameMessageConstant}
	}
	if !IsSafeDirectoryName(repositoryName) {
		return "", RemoteURLParseError{Input: remote, Message: unsafeDirectoryNameMessageConstant}
	}
	return repositoryName, nil
}

// IsSafeDirectoryName reports whether name can be used as a single directory component.
func IsSafeDirectoryName(name string) bool {
	if len(name) == 0 || name == currentDirectoryNameConstant || name == parentDirectoryNameConstant {
		return false
	}
	if strings.ContainsAny(name, pathSeparatorConstant+windowsPathSeparatorConstant+sshPathDelimiterConstant) {
		return false
	}
	for _, character := range name {
		if unicode.IsControl(character) {
			return false
		}
	}
	return true
}

func parseHierarchicalRemote(protocol RemoteProtocol, remainder string, original string) (RemoteURL, error) {
	remainder = stripQueryAndFragment(remainder)
	hostAndPath := strings.SplitN(remainder, pathSeparatorConstant, 2)
	if len(hostAndPath) != 2 || len(hostAndPath[0]) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	host := hostAndPath[0]
	if userSplitIndex := strings.LastIndex(host, sshUserDelimiterConstant); userSplitIndex >= 0 {
		host = host[userSplitIndex+1:]
	}
	return RemoteURL{Protocol: protocol, Host: host, Path: hostAndPath[1]}, nil
}

func parseScpLikeRemote(remote string, original string) (RemoteURL, error) {
	pathSplitIndex := strings.Index(remote, sshPathDelimiterConstant)
	hostWithUser := remote[:pathSplitIndex]
	host := hostWithUser
	if userSplitIndex := strings.LastIndex(hostWithUser, sshUserDelimiterConstant); userSplitIndex >= 0 {
		host = hostWithUser[userSplitIndex+1:]
	}
	if len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Path: remote[pathSplitIndex+1:]}, nil
}

// isScpLikeRemote matches git's rule: a colon appears before any slash.
func isScpLikeRemote(remote string) bool {
	colonIndex := strings.Index(remote, sshPathDelimiterConstant)
	if colonIndex <= 1 {
		return false
	}
	slashIndex := strings.Index(remote, pathSeparatorConstant)
	return slashIndex == -1 || colonIndex < slashIndex
}

func stripQueryAndFragment(remainder string) string {
	if queryIndex := strings.Index(remainder, querySeparatorConstant); queryIndex >= 0 {
		remainder = remainder[:queryIndex]
	}
	if fragmentIndex := strings.Index(remainder, fragmentSeparatorConstant); fragmentIndex >= 0 {
		remainder = remainder[:fragmentIndex]
	}
	return remainder
}
