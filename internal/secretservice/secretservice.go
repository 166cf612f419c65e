// SPDX-License-Identifier: Apache-2.0

// Package secretservice is a client of the Freedesktop Secret Service API
// (org.freedesktop.secrets) as implemented by gnome-keyring, KWallet and
// KeePassXC. Secrets travel over an encrypted transport session when the
// service supports one.
package secretservice

import (
	"errors"

	"github.com/godbus/dbus/v5"
)

const (
	BusName     = "org.freedesktop.secrets"
	ServicePath = "/org/freedesktop/secrets"

	ServiceIface    = "org.freedesktop.Secret.Service"
	CollectionIface = "org.freedesktop.Secret.Collection"
	ItemIface       = "org.freedesktop.Secret.Item"
	SessionIface    = "org.freedesktop.Secret.Session"
	PromptIface     = "org.freedesktop.Secret.Prompt"

	CollectionPathPrefix = "/org/freedesktop/secrets/collection/"

	// AlgorithmDH is the encrypted transport algorithm.
	AlgorithmDH = "dh-ietf1024-sha256-aes128-cbc-pkcs7"
	// AlgorithmPlain sends secrets unencrypted over the bus.
	AlgorithmPlain = "plain"

	contentType = "text/plain; charset=utf8"

	// noPrompt is returned in place of a prompt path when no user
	// interaction is needed, and by ReadAlias for an unknown alias.
	noPrompt = dbus.ObjectPath("/")
)

// D-Bus error names that callers classify.
const (
	ErrNameNoSuchObject   = "org.freedesktop.Secret.Error.NoSuchObject"
	ErrNameIsLocked       = "org.freedesktop.Secret.Error.IsLocked"
	ErrNameNoSession      = "org.freedesktop.Secret.Error.NoSession"
	ErrNameServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	ErrNameNameHasNoOwner = "org.freedesktop.DBus.Error.NameHasNoOwner"
	ErrNameNotSupported   = "org.freedesktop.DBus.Error.NotSupported"
)

var (
	// ErrServiceUnavailable is returned when no session bus can be reached.
	ErrServiceUnavailable = errors.New("secretservice: session bus not available")
	// ErrNoSuchCollection is returned when neither an alias, a collection
	// path name nor a collection label matches the requested collection.
	ErrNoSuchCollection = errors.New("secretservice: no such collection")
	// ErrNoSuchItem is returned when no item matches the search attributes.
	ErrNoSuchItem = errors.New("secretservice: no matching item")
	// ErrPromptDismissed is returned when the user dismisses an unlock or
	// confirmation prompt.
	ErrPromptDismissed = errors.New("secretservice: prompt dismissed")
)

// Secret is the D-Bus type (oayays) representing an encoded secret.
type Secret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

// Item is a stored secret together with its metadata.
type Item struct {
	Path       dbus.ObjectPath
	Label      string
	Attributes map[string]string
	Secret     []byte
}

// ErrorName returns the D-Bus error name carried by err, or "".
func ErrorName(err error) string {
	var de dbus.Error
	if errors.As(err, &de) {
		return de.Name
	}
	var pde *dbus.Error
	if errors.As(err, &pde) && pde != nil {
		return pde.Name
	}
	return ""
}

// CollectionPath returns the D-Bus object path for a named collection.
func CollectionPath(name string) dbus.ObjectPath {
	return dbus.ObjectPath(CollectionPathPrefix + name)
}

// ItemPath returns the D-Bus object path for an item within a collection.
func ItemPath(collection, id string) dbus.ObjectPath {
	return dbus.ObjectPath(CollectionPathPrefix + collection + "/" + id)
}

// CollectionNameFromPath extracts the collection name from a collection or
// item path.
// e.g., /org/freedesktop/secrets/collection/login/12 -> "login"
func CollectionNameFromPath(path dbus.ObjectPath) string {
	s := string(path)
	if len(s) <= len(CollectionPathPrefix) || s[:len(CollectionPathPrefix)] != CollectionPathPrefix {
		return ""
	}
	rest := s[len(CollectionPathPrefix):]
	for i, c := range rest {
		if c == '/' {
			return rest[:i]
		}
	}
	return rest
}
