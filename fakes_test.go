// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"slices"
	"sync"
	"testing"

	"github.com/akihiro/keyring/internal/keychain"
	"github.com/akihiro/keyring/internal/mockstore"
	"github.com/akihiro/keyring/internal/wincred"
)

// fakeKeychain is an in-memory keychainClient. Items are keyed by keychain
// path, service and account.
type fakeKeychain struct {
	mu    sync.Mutex
	items map[[3]string][]byte
	// err, when set, is returned by every method.
	err   error
	calls int
}

func newFakeKeychain() *fakeKeychain {
	return &fakeKeychain{items: make(map[[3]string][]byte)}
}

func (f *fakeKeychain) DefaultKeychain(d keychain.Domain) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "/Library/Keychains/" + string(d) + ".keychain-db", nil
}

func (f *fakeKeychain) FindGenericPassword(kc, service, account string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	pw, ok := f.items[[3]string{kc, service, account}]
	if !ok {
		return nil, &keychain.StatusError{Op: "find-generic-password", Status: keychain.ErrSecItemNotFound, ExitCode: 44}
	}
	return slices.Clone(pw), nil
}

func (f *fakeKeychain) AddGenericPassword(kc, service, account string, password []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.items[[3]string{kc, service, account}] = slices.Clone(password)
	return nil
}

func (f *fakeKeychain) DeleteGenericPassword(kc, service, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	key := [3]string{kc, service, account}
	if _, ok := f.items[key]; !ok {
		return &keychain.StatusError{Op: "delete-generic-password", Status: keychain.ErrSecItemNotFound, ExitCode: 44}
	}
	delete(f.items, key)
	return nil
}

// fakeCredStore is an in-memory credStore keyed by target name.
type fakeCredStore struct {
	mu    sync.Mutex
	creds map[string]wincred.Credential
	err   error
	calls int
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{creds: make(map[string]wincred.Credential)}
}

func (f *fakeCredStore) Read(target string) (*wincred.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.creds[target]
	if !ok {
		return nil, wincred.ErrNotFound
	}
	c.Blob = slices.Clone(c.Blob)
	return &c, nil
}

func (f *fakeCredStore) Write(c *wincred.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	stored := *c
	stored.Blob = slices.Clone(c.Blob)
	f.creds[c.TargetName] = stored
	return nil
}

func (f *fakeCredStore) Delete(target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.creds[target]; !ok {
		return wincred.ErrNotFound
	}
	delete(f.creds, target)
	return nil
}

func newMockSecretServiceBackend(ms *mockstore.Store) *secretServiceBackend {
	return &secretServiceBackend{
		connect: func() (secretServiceClient, error) { return ms.Connect() },
	}
}

// useFakeBackend replaces the active backend with one for the current
// platform built on in-memory fakes, for the duration of the test.
func useFakeBackend(t *testing.T) backend {
	t.Helper()
	var b backend
	switch CurrentPlatform() {
	case MacOS:
		b = &keychainBackend{client: newFakeKeychain()}
	case Windows:
		b = &wincredBackend{store: newFakeCredStore()}
	default:
		b = newMockSecretServiceBackend(mockstore.New())
	}
	prev := active
	active = b
	t.Cleanup(func() { active = prev })
	return b
}
