//go:build !linux

package host

import "github.com/gogpu/sdcs"

// dropPrivileges is a no-op where no restricted execution mode is wired.
func dropPrivileges() {
	sdcs.Logger().Debug("host: no sandbox hook on this platform")
}
