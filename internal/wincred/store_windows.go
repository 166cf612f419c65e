// SPDX-License-Identifier: Apache-2.0

//go:build windows

package wincred

import (
	"github.com/danieljoos/wincred"
)

// Store accesses generic credentials of the current logon session.
type Store struct{}

// New returns a Store.
func New() *Store { return &Store{} }

// Read returns the generic credential named target.
func (Store) Read(target string) (*Credential, error) {
	cred, err := wincred.GetGenericCredential(target)
	if err != nil {
		return nil, err
	}
	return &Credential{
		TargetName:  cred.TargetName,
		TargetAlias: cred.TargetAlias,
		UserName:    cred.UserName,
		Comment:     cred.Comment,
		Blob:        cred.CredentialBlob,
	}, nil
}

// Write creates or replaces a generic credential with PersistLocalMachine
// scope, so it survives logoff but does not roam.
func (Store) Write(c *Credential) error {
	if err := c.Validate(); err != nil {
		return err
	}
	cred := wincred.NewGenericCredential(c.TargetName)
	cred.TargetAlias = c.TargetAlias
	cred.UserName = c.UserName
	cred.Comment = c.Comment
	cred.CredentialBlob = c.Blob
	cred.Persist = wincred.PersistLocalMachine
	return cred.Write()
}

// Delete removes the generic credential named target.
func (Store) Delete(target string) error {
	cred, err := wincred.GetGenericCredential(target)
	if err != nil {
		return err
	}
	return cred.Delete()
}
