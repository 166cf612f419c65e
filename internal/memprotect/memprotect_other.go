// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package memprotect

// HardenProcess is a no-op on this platform.
func HardenProcess() error { return nil }
