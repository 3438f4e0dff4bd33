package credentials

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

const (
	userinfoPatternConstant         = `([a-zA-Z][a-zA-Z0-9+.-]*://)([^/@\s:]+)(?::([^/@\s]*))?@`
	minimumRedactableLengthConstant = 4
)

var userinfoPattern = regexp.MustCompile(userinfoPatternConstant)

// Redactor masks registered secrets and any credentials embedded in URL userinfo.
type Redactor struct {
	mutex   sync.RWMutex
	secrets map[string]struct{}
}

// NewRedactor constructs a Redactor with no registered secrets.
func NewRedactor() *Redactor {
	return &Redactor{secrets: map[string]struct{}{}}
}

// Register adds secrets that must never appear verbatim in redacted output.
func (redactor *Redactor) Register(secrets ...string) {
	if redactor == nil {
		return
	}
	redactor.mutex.Lock()
	defer redactor.mutex.Unlock()
	for _, secret := range secrets {
		trimmedSecret := strings.TrimSpace(secret)
		if len(trimmedSecret) < minimumRedactableLengthConstant {
			continue
		}
		redactor.secrets[trimmedSecret] = struct{}{}
	}
}

// Redact returns text with URL credentials and registered secrets masked.
func (redactor *Redactor) Redact(text string) string {
	redacted := userinfoPattern.ReplaceAllStringFunc(text, maskUserinfo)
	if redactor == nil {
		return redacted
	}

	redactor.mutex.RLock()
	secrets := make([]string, 0, len(redactor.secrets))
	for secret := range redactor.secrets {
		secrets = append(secrets, secret)
	}
	redactor.mutex.RUnlock()

	sort.Slice(secrets, func(leftIndex int, rightIndex int) bool {
		return len(secrets[leftIndex]) > len(secrets[rightIndex])
	})
	for _, secret := range secrets {
		redacted = strings.ReplaceAll(redacted, secret, Mask(secret))
	}
	return redacted
}

// RedactArguments applies Redact to every argument.
func (redactor *Redactor) RedactArguments(arguments []string) []string {
	redactedArguments := make([]string, len(arguments))
	for argumentIndex, argument := range arguments {
		redactedArguments[argumentIndex] = redactor.Redact(argument)
	}
	return redactedArguments
}

func maskUserinfo(match string) string {
	submatches := userinfoPattern.FindStringSubmatch(match)
	scheme := submatches[1]
	username := submatches[2]
	password := submatches[3]
	if len(password) > 0 {
		return scheme + username + ":" + Mask(password) + "@"
	}
	return scheme + Mask(username) + "@"
}
