// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"errors"

	"github.com/akihiro/keyring/internal/secretservice"
)

// secretServiceClient is the Secret Service native contract;
// *secretservice.Client implements it.
type secretServiceClient interface {
	Store(collection, label string, attrs map[string]string, secret []byte) error
	Lookup(collection string, attrs map[string]string) (*secretservice.Item, error)
	Remove(collection string, attrs map[string]string) error
	Close() error
}

// secretServiceBackend stores LinuxCredentials as Secret Service items. It
// opens a fresh transport session for every operation.
type secretServiceBackend struct {
	connect func() (secretServiceClient, error)
}

func (b *secretServiceBackend) Platform() Platform { return Linux }

func (b *secretServiceBackend) SetPassword(c Credential, password string) error {
	lc, ok := c.(LinuxCredential)
	if !ok {
		return ErrWrongCredentialPlatform
	}
	return b.with(func(client secretServiceClient) error {
		return client.Store(lc.Collection, lc.Label, lc.Attributes, []byte(password))
	})
}

func (b *secretServiceBackend) GetPassword(c Credential) (string, Credential, error) {
	lc, ok := c.(LinuxCredential)
	if !ok {
		return "", nil, ErrWrongCredentialPlatform
	}
	var item *secretservice.Item
	err := b.with(func(client secretServiceClient) error {
		var err error
		item, err = client.Lookup(lc.Collection, lc.Attributes)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	password, err := decodeUTF8(item.Secret)
	if err != nil {
		return "", nil, err
	}
	if item.Label != "" {
		lc.Label = item.Label
	}
	if item.Attributes != nil {
		lc.Attributes = item.Attributes
	}
	return password, lc.Clone(), nil
}

func (b *secretServiceBackend) DeletePassword(c Credential) error {
	lc, ok := c.(LinuxCredential)
	if !ok {
		return ErrWrongCredentialPlatform
	}
	return b.with(func(client secretServiceClient) error {
		return client.Remove(lc.Collection, lc.Attributes)
	})
}

// with runs fn on a connected client and maps any failure into the taxonomy.
func (b *secretServiceBackend) with(fn func(secretServiceClient) error) error {
	client, err := b.connect()
	if err != nil {
		return decodeSecretServiceError(err)
	}
	defer client.Close()
	if err := fn(client); err != nil {
		return decodeSecretServiceError(err)
	}
	return nil
}

// secretServiceErrorKinds maps D-Bus error names. Names not listed are
// PlatformFailure.
var secretServiceErrorKinds = map[string]Kind{
	secretservice.ErrNameNoSuchObject:   NoEntry,
	secretservice.ErrNameIsLocked:       NoStorageAccess,
	secretservice.ErrNameServiceUnknown: NoStorageAccess,
	secretservice.ErrNameNameHasNoOwner: NoStorageAccess,
}

func decodeSecretServiceError(err error) error {
	switch {
	case errors.Is(err, secretservice.ErrNoSuchItem):
		return ErrNoEntry
	case errors.Is(err, secretservice.ErrServiceUnavailable),
		errors.Is(err, secretservice.ErrNoSuchCollection),
		errors.Is(err, secretservice.ErrPromptDismissed):
		return noStorageAccess(err)
	}
	switch secretServiceErrorKinds[secretservice.ErrorName(err)] {
	case NoEntry:
		return ErrNoEntry
	case NoStorageAccess:
		return noStorageAccess(err)
	}
	return platformFailure(err)
}
