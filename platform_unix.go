// SPDX-License-Identifier: Apache-2.0

//go:build !darwin && !windows

package keyring

import "github.com/akihiro/keyring/internal/secretservice"

const currentPlatform = Linux

func newPlatformBackend() backend {
	return &secretServiceBackend{
		connect: func() (secretServiceClient, error) {
			return secretservice.Connect()
		},
	}
}
