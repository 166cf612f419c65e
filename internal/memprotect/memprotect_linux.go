// SPDX-License-Identifier: Apache-2.0

//go:build linux

package memprotect

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/akihiro/keyring/internal/logging"
)

// HardenProcess marks the process non-dumpable and locks its memory.
//
//  1. prctl(PR_SET_DUMPABLE, 0) disables core dumps and blocks ptrace and
//     /proc/<pid>/mem access by unprivileged peers with the same UID.
//
//  2. mlockall(MCL_CURRENT|MCL_FUTURE) keeps pages out of swap.
//
// Only a prctl failure is returned. mlockall is commonly refused in
// containers or under a small RLIMIT_MEMLOCK and is logged instead.
func HardenProcess() error {
	if err := unix.Prctl(unix.PR_SET_DUMPABLE, 0, 0, 0, 0); err != nil {
		return fmt.Errorf("prctl PR_SET_DUMPABLE=0: %w", err)
	}

	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		logging.Component("memprotect").WithError(err).Warn("mlockall failed; passwords may reach swap")
	}
	return nil
}
