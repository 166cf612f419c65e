// SPDX-License-Identifier: Apache-2.0

package keyring

// Entry is a handle on one stored password. It owns its credential and never
// changes it; every operation works on a clone. Discarding an Entry leaves
// the stored password untouched.
type Entry struct {
	target Credential
}

// NewEntry returns an entry for service and username in the platform's
// default store location.
func NewEntry(service, username string) *Entry {
	return &Entry{target: DefaultCredential(CurrentPlatform(), service, username)}
}

// NewEntryWithTarget returns an entry for service and username at target.
// On macOS the target names a keychain domain, on Linux a Secret Service
// collection; on Windows it is the credential's target name.
func NewEntryWithTarget(target, service, username string) *Entry {
	return &Entry{target: DefaultCredentialWithTarget(CurrentPlatform(), target, service, username)}
}

// NewEntryWithCredential returns an entry that uses a caller-built credential.
// It fails with ErrWrongCredentialPlatform unless c belongs to the current platform.
func NewEntryWithCredential(c Credential) (*Entry, error) {
	if c == nil || !c.MatchesPlatform(CurrentPlatform()) {
		return nil, ErrWrongCredentialPlatform
	}
	return &Entry{target: c.Clone()}, nil
}

// Target returns a copy of the entry's credential.
func (e *Entry) Target() Credential {
	return e.target.Clone()
}

// SetPassword stores password, replacing any previous value.
func (e *Entry) SetPassword(password string) error {
	return active.SetPassword(e.target.Clone(), password)
}

// GetPassword returns the stored password, or ErrNoEntry if there is none.
func (e *Entry) GetPassword() (string, error) {
	password, _, err := active.GetPassword(e.target.Clone())
	return password, err
}

// GetPasswordAndCredential returns the stored password and the entry's
// credential as reported by the store, including metadata written by other
// applications (labels, comments, attributes).
func (e *Entry) GetPasswordAndCredential() (string, Credential, error) {
	return active.GetPassword(e.target.Clone())
}

// DeletePassword removes the stored password. The credential itself stays
// usable for a later SetPassword.
func (e *Entry) DeletePassword() error {
	return active.DeletePassword(e.target.Clone())
}
