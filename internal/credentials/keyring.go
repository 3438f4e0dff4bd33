package credentials

import (
	"fmt"

	"github.com/99designs/keyring"
)

const (
	// DefaultKeyringServiceName scopes keyring entries created for gitmigrate.
	DefaultKeyringServiceName        = "gitmigrate"
	keyringFileDirectoryConstant     = "~/.config/gitmigrate/credentials"
	keyringFilePasswordConstant      = "gitmigrate-file-key"
	keyringOpenErrorTemplateConstant = "opening keyring: %w"
	keyringGetErrorTemplateConstant  = "getting credential %q: %w"
	keyringSetErrorTemplateConstant  = "setting credential %q: %w"
)

// KeyringOpener opens a keyring for the given service.
type KeyringOpener func(serviceName string) (keyring.Keyring, error)

// SystemKeyring reads and writes tokens in the operating system keyring.
type SystemKeyring struct {
	serviceName string
	opener      KeyringOpener
}

// NewSystemKeyring constructs a SystemKeyring for the service name.
func NewSystemKeyring(serviceName string) *SystemKeyring {
	return &SystemKeyring{serviceName: serviceName, opener: openSystemKeyring}
}

// NewSystemKeyringWithOpener constructs a SystemKeyring using a custom opener.
func NewSystemKeyringWithOpener(serviceName string, opener KeyringOpener) *SystemKeyring {
	if opener == nil {
		opener = openSystemKeyring
	}
	return &SystemKeyring{serviceName: serviceName, opener: opener}
}

// Get retrieves the token stored under key.
func (systemKeyring *SystemKeyring) Get(key string) (string, error) {
	ring, openError := systemKeyring.opener(systemKeyring.serviceName)
	if openError != nil {
		return "", openError
	}

	item, getError := ring.Get(key)
	if getError != nil {
		return "", fmt.Errorf(keyringGetErrorTemplateConstant, key, getError)
	}
	return string(item.Data), nil
}

// Set stores the token under key.
func (systemKeyring *SystemKeyring) Set(key string, token string) error {
	ring, openError := systemKeyring.opener(systemKeyring.serviceName)
	if openError != nil {
		return openError
	}

	setError := ring.Set(keyring.Item{Key: key, Data: []byte(token)})
	if setError != nil {
		return fmt.Errorf(keyringSetErrorTemplateConstant, key, setError)
	}
	return nil
}

func openSystemKeyring(serviceName string) (keyring.Keyring, error) {
	ring, openError := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  keyringFileDirectoryConstant,
		FilePasswordFunc:         keyring.FixedStringPrompt(keyringFilePasswordConstant),
		KeychainTrustApplication: true,
	})
	if openError != nil {
		return nil, fmt.Errorf(keyringOpenErrorTemplateConstant, openError)
	}
	return ring, nil
}
