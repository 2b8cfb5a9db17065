//go:build linux

package host

import (
	"golang.org/x/sys/unix"

	"github.com/gogpu/sdcs"
)

// dropPrivileges enters a restricted execution mode before the command
// loop starts: no-new-privs stops the child (and anything it execs) from
// gaining privileges through setuid or capabilities. Failure is logged,
// not fatal.
func dropPrivileges() {
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		sdcs.Logger().Warn("host: no-new-privs unavailable", "error", err)
		return
	}
	sdcs.Logger().Debug("host: no-new-privs set")
}
