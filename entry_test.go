// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomName returns a name no other test uses.
func randomName(t *testing.T) string {
	t.Helper()
	return "keyring-test-" + uuid.NewString()
}

func TestNewEntryTargetsMatchDefaults(t *testing.T) {
	service, user := randomName(t), randomName(t)

	e := NewEntry(service, user)
	assert.True(t, e.Target().Equal(DefaultCredential(CurrentPlatform(), service, user)))

	e = NewEntryWithTarget("work", service, user)
	assert.True(t, e.Target().Equal(DefaultCredentialWithTarget(CurrentPlatform(), "work", service, user)))
	assert.True(t, e.Target().MatchesPlatform(CurrentPlatform()))
}

func TestEntryRoundTrip(t *testing.T) {
	useFakeBackend(t)
	e := NewEntry(randomName(t), randomName(t))

	_, err := e.GetPassword()
	assert.ErrorIs(t, err, ErrNoEntry)

	require.NoError(t, e.SetPassword("first"))
	pw, err := e.GetPassword()
	require.NoError(t, err)
	assert.Equal(t, "first", pw)

	require.NoError(t, e.SetPassword("second"))
	pw, err = e.GetPassword()
	require.NoError(t, err)
	assert.Equal(t, "second", pw)

	require.NoError(t, e.DeletePassword())
	_, err = e.GetPassword()
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestEntryEmptyAndUnicodePasswords(t *testing.T) {
	useFakeBackend(t)
	for _, password := range []string{"", "pässwörd", "key \U0001F511", "line\nbreak"} {
		e := NewEntry(randomName(t), randomName(t))
		require.NoError(t, e.SetPassword(password))
		got, err := e.GetPassword()
		require.NoError(t, err)
		assert.Equal(t, password, got)
		require.NoError(t, e.DeletePassword())
	}
}

func TestEntryDeleteMissing(t *testing.T) {
	useFakeBackend(t)
	e := NewEntry(randomName(t), randomName(t))
	assert.ErrorIs(t, e.DeletePassword(), ErrNoEntry)
}

func TestEntriesAreIndependent(t *testing.T) {
	useFakeBackend(t)
	service := randomName(t)
	a := NewEntry(service, randomName(t))
	b := NewEntry(service, randomName(t))

	require.NoError(t, a.SetPassword("a"))
	_, err := b.GetPassword()
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestEntriesConcurrent(t *testing.T) {
	useFakeBackend(t)
	service := randomName(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		e := NewEntry(service, fmt.Sprintf("user-%d", i))
		want := fmt.Sprintf("pw-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				if err := e.SetPassword(want); err != nil {
					errs <- err
					return
				}
				got, err := e.GetPassword()
				if err != nil {
					errs <- err
					return
				}
				if got != want {
					errs <- fmt.Errorf("entry %d read %q", i, got)
					return
				}
				if err := e.DeletePassword(); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestEntryGetPasswordAndCredential(t *testing.T) {
	useFakeBackend(t)
	e := NewEntry(randomName(t), randomName(t))
	require.NoError(t, e.SetPassword("pw"))

	pw, c, err := e.GetPasswordAndCredential()
	require.NoError(t, err)
	assert.Equal(t, "pw", pw)
	assert.True(t, c.Equal(e.Target()), "stored %v, target %v", c, e.Target())
}

func TestNewEntryWithCredential(t *testing.T) {
	useFakeBackend(t)
	for _, p := range allPlatforms {
		c := DefaultCredential(p, randomName(t), randomName(t))
		e, err := NewEntryWithCredential(c)
		if p != CurrentPlatform() {
			assert.ErrorIs(t, err, ErrWrongCredentialPlatform, "%s credential", p)
			assert.Nil(t, e)
			continue
		}
		require.NoError(t, err)
		assert.True(t, e.Target().Equal(c))

		require.NoError(t, e.SetPassword("pw"))
		pw, err := e.GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "pw", pw)
		require.NoError(t, e.DeletePassword())
	}

	_, err := NewEntryWithCredential(nil)
	assert.ErrorIs(t, err, ErrWrongCredentialPlatform)
}

func TestEntryOwnsItsCredential(t *testing.T) {
	c := DefaultCredential(Linux, "svc", "alice").(LinuxCredential)
	e := &Entry{target: c.Clone()}

	c.Attributes["service"] = "changed"
	assert.Equal(t, "svc", e.Target().(LinuxCredential).Service())

	e.Target().(LinuxCredential).Attributes["service"] = "changed"
	assert.Equal(t, "svc", e.Target().(LinuxCredential).Service())
}

func TestEntryDispatchRejectsForeignCredential(t *testing.T) {
	useFakeBackend(t)
	var foreign Credential
	for _, p := range allPlatforms {
		if p != CurrentPlatform() {
			foreign = DefaultCredential(p, "svc", "alice")
			break
		}
	}
	e := &Entry{target: foreign}
	assert.ErrorIs(t, e.SetPassword("pw"), ErrWrongCredentialPlatform)
	_, err := e.GetPassword()
	assert.ErrorIs(t, err, ErrWrongCredentialPlatform)
	assert.ErrorIs(t, e.DeletePassword(), ErrWrongCredentialPlatform)
}
