//go:build !linux

package psutil

import "github.com/drmaq/psutil/pkg/system/backend"

func nativeBackend() backend.Backend {
	return unsupported{}
}

// unsupported satisfies the backend contract on platforms without a native
// driver; every query fails with ErrUnsupportedPlatform.
type unsupported struct{}

func (unsupported) BootTime() (float64, error) { return 0, backend.ErrUnsupportedPlatform }
func (unsupported) ClockTicks() int            { return 100 }
func (unsupported) PageSize() int              { return 4096 }

func (unsupported) Pids() ([]int32, error)        { return nil, backend.ErrUnsupportedPlatform }
func (unsupported) PidExists(int32) (bool, error) { return false, backend.ErrUnsupportedPlatform }
func (unsupported) IsZombie(int32) (bool, error)  { return false, backend.ErrUnsupportedPlatform }

func (unsupported) SwapMemory() (backend.RawSwap, error) {
	return backend.RawSwap{}, backend.ErrUnsupportedPlatform
}
func (unsupported) DiskUsage(string) (backend.RawDiskUsage, error) {
	return backend.RawDiskUsage{}, backend.ErrUnsupportedPlatform
}
func (unsupported) DiskIOCounters() (map[string]backend.RawDiskIO, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) DiskPartitions(bool) ([]backend.RawPartition, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) NetIOCounters() (map[string]backend.RawNetIO, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) NetIfaceAddrs() ([]backend.RawIfaceAddr, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) NetIfaceStats() (map[string]backend.RawIfaceStats, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) Users() ([]backend.RawUser, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) Connections(int32) ([]backend.RawConn, error) {
	return nil, backend.ErrUnsupportedPlatform
}

func (unsupported) ProcStat(int32) (backend.RawProcStat, error) {
	return backend.RawProcStat{}, backend.ErrUnsupportedPlatform
}
func (unsupported) ProcStatus(int32) (backend.RawProcStatus, error) {
	return backend.RawProcStatus{}, backend.ErrUnsupportedPlatform
}
func (unsupported) ProcEnviron(int32) ([]byte, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) ProcIO(int32) (backend.RawProcIO, error) {
	return backend.RawProcIO{}, backend.ErrUnsupportedPlatform
}
func (unsupported) ProcOpenFiles(int32) ([]backend.RawOpenFile, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) ProcThreads(int32) ([]backend.RawThread, error) {
	return nil, backend.ErrUnsupportedPlatform
}
func (unsupported) ProcIOPriority(int32) (backend.RawIOPriority, error) {
	return backend.RawIOPriority{}, backend.ErrUnsupportedPlatform
}
