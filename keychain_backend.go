// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"errors"

	"github.com/akihiro/keyring/internal/keychain"
)

// keychainClient is the macOS native contract; *keychain.Client implements it.
type keychainClient interface {
	DefaultKeychain(domain keychain.Domain) (string, error)
	FindGenericPassword(keychain, service, account string) ([]byte, error)
	AddGenericPassword(keychain, service, account string, password []byte) error
	DeleteGenericPassword(keychain, service, account string) error
}

// keychainBackend stores MacCredentials as generic passwords in the default
// keychain of the credential's domain.
type keychainBackend struct {
	client keychainClient
}

func (b *keychainBackend) Platform() Platform { return MacOS }

func (b *keychainBackend) SetPassword(c Credential, password string) error {
	mc, ok := c.(MacCredential)
	if !ok {
		return ErrWrongCredentialPlatform
	}
	kc, err := b.keychain(mc)
	if err != nil {
		return err
	}
	if err := b.client.AddGenericPassword(kc, mc.Service, mc.Account, []byte(password)); err != nil {
		return decodeKeychainError(err)
	}
	return nil
}

func (b *keychainBackend) GetPassword(c Credential) (string, Credential, error) {
	mc, ok := c.(MacCredential)
	if !ok {
		return "", nil, ErrWrongCredentialPlatform
	}
	kc, err := b.keychain(mc)
	if err != nil {
		return "", nil, err
	}
	raw, err := b.client.FindGenericPassword(kc, mc.Service, mc.Account)
	if err != nil {
		return "", nil, decodeKeychainError(err)
	}
	// Third-party applications may store arbitrary bytes.
	password, err := decodeUTF8(raw)
	if err != nil {
		return "", nil, err
	}
	return password, mc, nil
}

func (b *keychainBackend) DeletePassword(c Credential) error {
	mc, ok := c.(MacCredential)
	if !ok {
		return ErrWrongCredentialPlatform
	}
	kc, err := b.keychain(mc)
	if err != nil {
		return err
	}
	if err := b.client.DeleteGenericPassword(kc, mc.Service, mc.Account); err != nil {
		return decodeKeychainError(err)
	}
	return nil
}

func (b *keychainBackend) keychain(mc MacCredential) (string, error) {
	path, err := b.client.DefaultKeychain(keychainDomain(mc.Domain))
	if err != nil {
		return "", decodeKeychainError(err)
	}
	return path, nil
}

func keychainDomain(d MacKeychainDomain) keychain.Domain {
	switch d {
	case System:
		return keychain.DomainSystem
	case Common:
		return keychain.DomainCommon
	case Dynamic:
		return keychain.DomainDynamic
	default:
		return keychain.DomainUser
	}
}

// keychainStatusKinds maps Security framework result codes. Codes not listed
// are PlatformFailure.
var keychainStatusKinds = map[int32]Kind{
	keychain.ErrSecNotAvailable:      NoStorageAccess,
	keychain.ErrSecReadOnly:          NoStorageAccess,
	keychain.ErrSecNoSuchKeychain:    NoStorageAccess,
	keychain.ErrSecInvalidKeychain:   NoStorageAccess,
	keychain.ErrSecNoDefaultKeychain: NoStorageAccess,
	keychain.ErrSecItemNotFound:      NoEntry,
}

func decodeKeychainError(err error) error {
	var se *keychain.StatusError
	if errors.As(err, &se) {
		switch keychainStatusKinds[se.Status] {
		case NoEntry:
			return ErrNoEntry
		case NoStorageAccess:
			return noStorageAccess(err)
		}
		return platformFailure(err)
	}
	if errors.Is(err, keychain.ErrUnavailable) {
		return noStorageAccess(err)
	}
	return platformFailure(err)
}
