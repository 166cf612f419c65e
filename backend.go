// SPDX-License-Identifier: Apache-2.0

package keyring

// backend is implemented once per native secret store. Exactly one backend
// is active per build; see the platform_*.go files.
//
// Every method must reject a credential of another platform with
// ErrWrongCredentialPlatform before touching the native store.
type backend interface {
	// Platform returns the platform whose credentials this backend accepts.
	Platform() Platform

	// SetPassword stores password at c, replacing any existing value.
	SetPassword(c Credential, password string) error

	// GetPassword returns the password stored at c together with a copy of c
	// enriched with metadata reported by the store.
	GetPassword(c Credential) (string, Credential, error)

	// DeletePassword removes the password stored at c.
	DeletePassword(c Credential) error
}

// active is the backend used by every Entry.
var active backend = newPlatformBackend()
