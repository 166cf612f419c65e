// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"fmt"
	"maps"
	"strings"
)

// Credential is the platform-specific address of a stored password.
// It is implemented only by MacCredential, WinCredential and LinuxCredential.
type Credential interface {
	// Platform returns the platform this credential variant belongs to.
	Platform() Platform
	// MatchesPlatform reports whether the credential can be used on p.
	MatchesPlatform(p Platform) bool
	// Clone returns an independent copy.
	Clone() Credential
	// Equal reports value equality; credentials of different variants are never equal.
	Equal(other Credential) bool

	sealed()
}

// MacKeychainDomain selects which keychain scope holds a credential.
type MacKeychainDomain int

const (
	User MacKeychainDomain = iota
	System
	Common
	Dynamic
)

func (d MacKeychainDomain) String() string {
	switch d {
	case System:
		return "system"
	case Common:
		return "common"
	case Dynamic:
		return "dynamic"
	default:
		return "user"
	}
}

// ParseMacKeychainDomain maps a target string onto a keychain domain.
// Matching is case-insensitive; any unrecognized text selects User.
func ParseMacKeychainDomain(target string) MacKeychainDomain {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "system":
		return System
	case "common":
		return Common
	case "dynamic":
		return Dynamic
	default:
		return User
	}
}

// MacCredential addresses a generic password in a macOS keychain.
type MacCredential struct {
	Domain  MacKeychainDomain
	Service string
	Account string
}

func (c MacCredential) Platform() Platform              { return MacOS }
func (c MacCredential) MatchesPlatform(p Platform) bool { return p == MacOS }
func (c MacCredential) Clone() Credential               { return c }
func (c MacCredential) sealed()                         {}
func (c MacCredential) String() string {
	return fmt.Sprintf("mac(%s, service=%q, account=%q)", c.Domain, c.Service, c.Account)
}

func (c MacCredential) Equal(other Credential) bool {
	o, ok := other.(MacCredential)
	return ok && o == c
}

// WinCredential addresses a generic credential in the Windows Credential
// Manager. TargetName identifies it; the remaining fields are metadata
// written on set and refreshed from the store on get.
type WinCredential struct {
	Username    string
	TargetName  string
	TargetAlias string
	Comment     string
}

func (c WinCredential) Platform() Platform              { return Windows }
func (c WinCredential) MatchesPlatform(p Platform) bool { return p == Windows }
func (c WinCredential) Clone() Credential               { return c }
func (c WinCredential) sealed()                         {}
func (c WinCredential) String() string {
	return fmt.Sprintf("windows(target=%q, username=%q)", c.TargetName, c.Username)
}

func (c WinCredential) Equal(other Credential) bool {
	o, ok := other.(WinCredential)
	return ok && o == c
}

// Attribute keys written to Secret Service items.
const (
	AttrService     = "service"
	AttrUsername    = "username"
	AttrApplication = "application"

	// DefaultCollection is the Secret Service alias used when no target is given.
	DefaultCollection = "default"

	applicationName = "keyring"
)

// LinuxCredential addresses an item in a Secret Service collection.
// Items are located by matching all Attributes; Label is the display name
// written on set and refreshed from the store on get.
type LinuxCredential struct {
	Collection string
	Label      string
	Attributes map[string]string
}

func (c LinuxCredential) Platform() Platform              { return Linux }
func (c LinuxCredential) MatchesPlatform(p Platform) bool { return p == Linux }
func (c LinuxCredential) sealed()                         {}

// Service returns the service attribute.
func (c LinuxCredential) Service() string { return c.Attributes[AttrService] }

// Username returns the username attribute.
func (c LinuxCredential) Username() string { return c.Attributes[AttrUsername] }

func (c LinuxCredential) Clone() Credential {
	c.Attributes = maps.Clone(c.Attributes)
	return c
}

func (c LinuxCredential) Equal(other Credential) bool {
	o, ok := other.(LinuxCredential)
	if !ok {
		return false
	}
	return o.Collection == c.Collection && o.Label == c.Label && maps.Equal(o.Attributes, c.Attributes)
}

func (c LinuxCredential) String() string {
	return fmt.Sprintf("linux(collection=%q, service=%q, username=%q)", c.Collection, c.Service(), c.Username())
}

// DefaultCredential derives the credential used by NewEntry on platform p.
func DefaultCredential(p Platform, service, username string) Credential {
	return defaultCredential(p, nil, service, username)
}

// DefaultCredentialWithTarget derives the credential used by NewEntryWithTarget.
// On macOS the target names a keychain domain (see ParseMacKeychainDomain), on
// Linux a Secret Service collection, and on Windows it is used verbatim as
// the credential's target name. The Windows comment embeds the target,
// service and username and is limited to wincred.MaxCommentLen UTF-16 code
// units; SetPassword on a longer one fails with ErrPlatformFailure wrapping
// a *wincred.TooLongError for the "comment" field.
func DefaultCredentialWithTarget(p Platform, target, service, username string) Credential {
	return defaultCredential(p, &target, service, username)
}

// defaultCredential is total: every platform value, including ones outside
// the enum (treated as Linux), yields a credential.
func defaultCredential(p Platform, target *string, service, username string) Credential {
	switch p {
	case MacOS:
		domain := User
		if target != nil {
			domain = ParseMacKeychainDomain(*target)
		}
		return MacCredential{Domain: domain, Service: service, Account: username}
	case Windows:
		name := username + "." + service
		if target != nil {
			name = *target
		}
		return WinCredential{
			Username:   username,
			TargetName: name,
			Comment:    fmt.Sprintf("%s@%s:%s (%s)", username, service, name, applicationName),
		}
	default:
		collection := DefaultCollection
		if target != nil {
			collection = *target
		}
		return LinuxCredential{
			Collection: collection,
			Label:      fmt.Sprintf("Password for '%s' on '%s'", username, service),
			Attributes: map[string]string{
				AttrService:     service,
				AttrUsername:    username,
				AttrApplication: applicationName,
			},
		}
	}
}
