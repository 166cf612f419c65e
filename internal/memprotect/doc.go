// SPDX-License-Identifier: Apache-2.0

// Package memprotect hardens the keyring process before it reads a password,
// so the plaintext cannot be recovered from a core dump or from swap.
package memprotect
