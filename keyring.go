// SPDX-License-Identifier: Apache-2.0

// Package keyring stores, retrieves and deletes passwords in the native secret
// store of the running platform: the macOS Keychain, the Windows Credential
// Manager, or a Freedesktop Secret Service (gnome-keyring, KWallet, ...) on
// Linux and other Unix-like systems.
//
// Callers address a password through an Entry:
//
//	entry := keyring.NewEntry("my-service", "alice")
//	if err := entry.SetPassword("s3cret"); err != nil {
//		return err
//	}
//	password, err := entry.GetPassword()
//	if errors.Is(err, keyring.ErrNoEntry) {
//		// nothing stored yet
//	}
//
// Every entry owns a platform-specific Credential. NewEntry and
// NewEntryWithTarget derive it with DefaultCredential and
// DefaultCredentialWithTarget; NewEntryWithCredential accepts a caller-built
// one as long as it belongs to the current platform.
//
// All failures are *Error values whose Kind is one of NoEntry,
// WrongCredentialPlatform, BadEncoding, NoStorageAccess or PlatformFailure.
package keyring

// Platform identifies the native secret store family.
type Platform int

const (
	Linux Platform = iota + 1
	MacOS
	Windows
)

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	default:
		return "unknown"
	}
}

// CurrentPlatform returns the platform this binary was built for.
// Every GOOS other than darwin and windows uses the Secret Service and
// reports Linux.
func CurrentPlatform() Platform {
	return currentPlatform
}
