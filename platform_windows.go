// SPDX-License-Identifier: Apache-2.0

//go:build windows

package keyring

import "github.com/akihiro/keyring/internal/wincred"

const currentPlatform = Windows

func newPlatformBackend() backend {
	return &wincredBackend{store: wincred.New()}
}
