// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"errors"
	"syscall"

	"github.com/akihiro/keyring/internal/wincred"
)

// credStore is the Windows native contract; *wincred.Store implements it.
type credStore interface {
	Read(target string) (*wincred.Credential, error)
	Write(c *wincred.Credential) error
	Delete(target string) error
}

// wincredBackend stores WinCredentials as generic credentials whose blob is
// the UTF-16LE encoded password.
type wincredBackend struct {
	store credStore
}

func (b *wincredBackend) Platform() Platform { return Windows }

func (b *wincredBackend) SetPassword(c Credential, password string) error {
	wc, ok := c.(WinCredential)
	if !ok {
		return ErrWrongCredentialPlatform
	}
	cred := &wincred.Credential{
		TargetName:  wc.TargetName,
		TargetAlias: wc.TargetAlias,
		UserName:    wc.Username,
		Comment:     wc.Comment,
		Blob:        encodeUTF16LE(password),
	}
	if err := cred.Validate(); err != nil {
		return platformFailure(err)
	}
	if err := b.store.Write(cred); err != nil {
		return decodeWincredError(err)
	}
	return nil
}

func (b *wincredBackend) GetPassword(c Credential) (string, Credential, error) {
	wc, ok := c.(WinCredential)
	if !ok {
		return "", nil, ErrWrongCredentialPlatform
	}
	cred, err := b.store.Read(wc.TargetName)
	if err != nil {
		return "", nil, decodeWincredError(err)
	}
	password, err := decodeUTF16LE(cred.Blob)
	if err != nil {
		return "", nil, err
	}
	wc.Username = cred.UserName
	wc.TargetAlias = cred.TargetAlias
	wc.Comment = cred.Comment
	return password, wc, nil
}

func (b *wincredBackend) DeletePassword(c Credential) error {
	wc, ok := c.(WinCredential)
	if !ok {
		return ErrWrongCredentialPlatform
	}
	if err := b.store.Delete(wc.TargetName); err != nil {
		return decodeWincredError(err)
	}
	return nil
}

// wincredErrnoKinds maps Credential Manager error codes. Codes not listed
// are PlatformFailure.
var wincredErrnoKinds = map[syscall.Errno]Kind{
	wincred.ErrNotFound:           NoEntry,
	wincred.ErrNoSuchLogonSession: NoStorageAccess,
}

func decodeWincredError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch wincredErrnoKinds[errno] {
		case NoEntry:
			return ErrNoEntry
		case NoStorageAccess:
			return noStorageAccess(err)
		}
	}
	return platformFailure(err)
}
