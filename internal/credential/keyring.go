// Package credential stores secrets, such as the workbook protection
// password, in the operating system keyring so they never live in the
// config file or the database.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "chronos"

// ErrNotSet is returned when a requested credential has never been
// stored.
var ErrNotSet = errors.New("credential not set")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/chronos/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("chronos-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// WorkbookPassword retrieves the sheet protection password stored
// under key. Returns ErrNotSet when no password has been stored yet.
func WorkbookPassword(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("workbook password %q: %w", key, ErrNotSet)
		}
		return "", fmt.Errorf("getting workbook password %q: %w", key, err)
	}

	return string(item.Data), nil
}

// SetWorkbookPassword stores the sheet protection password under key.
func SetWorkbookPassword(key, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Label: "Chronos workbook protection password",
		Data:  []byte(password),
	})
	if err != nil {
		return fmt.Errorf("setting workbook password %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
