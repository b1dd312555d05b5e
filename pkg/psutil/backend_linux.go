//go:build linux

package psutil

import (
	"github.com/drmaq/psutil/pkg/system/backend"
	"github.com/drmaq/psutil/pkg/system/procfs"
)

func nativeBackend() backend.Backend {
	return procfs.New()
}
