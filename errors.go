// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"errors"
	"fmt"
)

// Kind classifies every failure reported by this package.
// The set is closed: each backend maps its native errors onto one of these.
type Kind int

const (
	// NoEntry means no secret is stored at the credential's address.
	NoEntry Kind = iota + 1
	// WrongCredentialPlatform means the credential variant belongs to another
	// platform. It is reported before any native call is made.
	WrongCredentialPlatform
	// BadEncoding means the stored secret is not valid text; Error.Raw holds the bytes.
	BadEncoding
	// NoStorageAccess means the secret store is unreachable, locked or absent.
	NoStorageAccess
	// PlatformFailure covers every other native failure.
	PlatformFailure
)

func (k Kind) String() string {
	switch k {
	case NoEntry:
		return "NoEntry"
	case WrongCredentialPlatform:
		return "WrongCredentialPlatform"
	case BadEncoding:
		return "BadEncoding"
	case NoStorageAccess:
		return "NoStorageAccess"
	case PlatformFailure:
		return "PlatformFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the only error type returned by Entry operations.
type Error struct {
	Kind Kind
	// Raw is set for BadEncoding.
	Raw []byte
	// Err is the native error for NoStorageAccess and PlatformFailure.
	Err error
}

// Kind sentinels. errors.Is(err, ErrNoEntry) matches any *Error of kind NoEntry.
var (
	ErrNoEntry                 = &Error{Kind: NoEntry}
	ErrWrongCredentialPlatform = &Error{Kind: WrongCredentialPlatform}
	ErrBadEncoding             = &Error{Kind: BadEncoding}
	ErrNoStorageAccess         = &Error{Kind: NoStorageAccess}
	ErrPlatformFailure         = &Error{Kind: PlatformFailure}
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case NoEntry:
		return "keyring: no matching entry found in secure storage"
	case WrongCredentialPlatform:
		return "keyring: credential does not match the current platform"
	case BadEncoding:
		return fmt.Sprintf("keyring: stored password is not valid text (%d bytes)", len(e.Raw))
	case NoStorageAccess:
		return "keyring: cannot access platform secure storage: " + causeText(e.Err)
	case PlatformFailure:
		return "keyring: platform secure storage failure: " + causeText(e.Err)
	default:
		return "keyring: " + e.Kind.String() + ": " + causeText(e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind sentinel (an *Error without payload)
// of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Raw != nil || t.Err != nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of err, or 0 if err is not (and does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func causeText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func noStorageAccess(err error) error { return &Error{Kind: NoStorageAccess, Err: err} }

func platformFailure(err error) error { return &Error{Kind: PlatformFailure, Err: err} }

func badEncoding(raw []byte) error {
	return &Error{Kind: BadEncoding, Raw: append([]byte(nil), raw...)}
}
