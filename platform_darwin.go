// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package keyring

import "github.com/akihiro/keyring/internal/keychain"

const currentPlatform = MacOS

func newPlatformBackend() backend {
	return &keychainBackend{client: keychain.New(keychain.DefaultPath)}
}
