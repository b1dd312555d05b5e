package psutil

import (
	"net"
	"os"
	"path/filepath"
	"runtime"

	"github.com/drmaq/psutil/pkg/pscache"
)

// Platform is the immutable capability description every platform-conditional
// decision reads from. It is built once and passed in explicitly rather than
// consulted through package globals, so tests can construct arbitrary
// capability mixes.
type Platform struct {
	// OS is the runtime GOOS value.
	OS string
	// HasIPv6 reports whether this host can actually bind an IPv6 socket,
	// not merely whether the address family is compiled in.
	HasIPv6 bool
	// HasUnixSockets reports whether UNIX-domain sockets work here.
	HasUnixSockets bool
	// UppercaseEnv is set on platforms whose environment variable names are
	// case-insensitive and canonically upper-case.
	UppercaseEnv bool
}

var platformCache = pscache.New[struct{}, Platform]()

// DetectPlatform probes the running host once and memoizes the result; the
// probes bind real sockets and are not free.
func DetectPlatform() Platform {
	p, _ := platformCache.GetOrCompute(struct{}{}, func() (Platform, error) {
		return Platform{
			OS:             runtime.GOOS,
			HasIPv6:        supportsIPv6(),
			HasUnixSockets: supportsUnixSockets(),
			UppercaseEnv:   runtime.GOOS == "windows",
		}, nil
	})
	return p
}

// supportsIPv6 checks that a loopback IPv6 listener can be bound. A kernel
// with the family compiled in but disabled (ipv6.disable=1) fails here,
// which is exactly the answer callers need.
func supportsIPv6() bool {
	ln, err := net.Listen("tcp6", "[::1]:0")
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

func supportsUnixSockets() bool {
	dir, err := os.MkdirTemp("", "psutil-probe")
	if err != nil {
		return false
	}
	defer os.RemoveAll(dir)
	ln, err := net.Listen("unix", filepath.Join(dir, "s"))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}
