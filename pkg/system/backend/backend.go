// Package backend defines the contract between the normalization layer and
// a platform driver. A driver hands over raw snapshots in OS-native fields
// and units; reshaping them into the public record types, classifying
// failures, and verifying process identity all happen above this interface.
package backend

import "errors"

// ErrUnsupportedPlatform is returned by every method of the stub backend on
// platforms without a driver.
var ErrUnsupportedPlatform = errors.New("backend: platform not supported")

// RawSwap is swap state as the kernel reports it: sizes in kilobytes,
// swap-in/out as page counts.
type RawSwap struct {
	TotalKB  uint64
	FreeKB   uint64
	PagesIn  uint64
	PagesOut uint64
	PageSize int
}

// RawDiskUsage mirrors statfs: block counts plus the block size.
type RawDiskUsage struct {
	Blocks uint64 // total data blocks
	Bfree  uint64 // free blocks (including root-reserved)
	Bavail uint64 // blocks available to unprivileged users
	Bsize  uint64 // block size in bytes
}

// RawDiskIO carries per-device counters in native units: sector counts for
// volume, milliseconds for time.
type RawDiskIO struct {
	ReadCount    uint64
	WriteCount   uint64
	ReadSectors  uint64
	WriteSectors uint64
	ReadTimeMS   uint64
	WriteTimeMS  uint64
}

// RawPartition is one mount-table entry.
type RawPartition struct {
	Device     string
	Mountpoint string
	Fstype     string
	Opts       string
}

// RawNetIO carries per-interface counters, already in bytes and packets.
type RawNetIO struct {
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
	Errin       uint64
	Errout      uint64
	Dropin      uint64
	Dropout     uint64
}

// RawUser is one login record, utmp-flavored field names.
type RawUser struct {
	User string
	Line string
	Host string
	Tv   float64 // login time, seconds since the epoch
}

// RawConn is one socket with numeric family/type codes left unresolved.
// Pid is the owning process when the driver can attribute the socket,
// -1 otherwise. For UNIX sockets LocalIP holds the path.
type RawConn struct {
	Fd         int32
	Family     uint32
	Type       uint32
	LocalIP    string
	LocalPort  uint32
	RemoteIP   string
	RemotePort uint32
	Status     string
	Pid        int32
}

// RawIfaceAddr is one address assigned to an interface.
type RawIfaceAddr struct {
	Iface     string
	Family    uint32
	Addr      string
	Netmask   string
	Broadcast string
	PTP       string
}

// RawIfaceStats is link-level interface state.
type RawIfaceStats struct {
	IsUp   bool
	Duplex int // 0 unknown, 1 half, 2 full
	Speed  uint64
	MTU    int
}

// RawProcStat is the per-process scheduler snapshot. CPU fields are in
// clock ticks; StartTicks is ticks since boot at which the process started.
type RawProcStat struct {
	Name       string
	State      byte
	Ppid       int32
	Utime      uint64
	Stime      uint64
	StartTicks uint64
}

// RawProcStatus carries credential and context-switch data.
type RawProcStatus struct {
	UIDs                   [3]int32 // real, effective, saved
	GIDs                   [3]int32
	VoluntaryCtxSwitches   int64
	InvoluntaryCtxSwitches int64
}

// RawProcIO is per-process I/O accounting: syscall counts and bytes that
// reached the storage layer.
type RawProcIO struct {
	Syscr      uint64
	Syscw      uint64
	ReadBytes  uint64
	WriteBytes uint64
}

// RawOpenFile is one open regular file.
type RawOpenFile struct {
	Path string
	Fd   int32
}

// RawThread is per-thread CPU accounting in clock ticks.
type RawThread struct {
	ID    int32
	Utime uint64
	Stime uint64
}

// RawIOPriority is the kernel I/O scheduling class and value.
type RawIOPriority struct {
	Class int32
	Value int32
}

// Backend is the narrow driver contract. Every call performs a fresh OS
// query; drivers do not cache, retry, or classify failures. File-not-found
// and permission failures must surface as errors matching fs.ErrNotExist and
// fs.ErrPermission (or the equivalent errno) so the layer above can map them
// into its taxonomy.
type Backend interface {
	// Host facts.
	BootTime() (float64, error)
	ClockTicks() int
	PageSize() int

	// Process table.
	Pids() ([]int32, error)
	PidExists(pid int32) (bool, error)
	IsZombie(pid int32) (bool, error)

	// System-wide snapshots.
	SwapMemory() (RawSwap, error)
	DiskUsage(path string) (RawDiskUsage, error)
	DiskIOCounters() (map[string]RawDiskIO, error)
	DiskPartitions(all bool) ([]RawPartition, error)
	NetIOCounters() (map[string]RawNetIO, error)
	NetIfaceAddrs() ([]RawIfaceAddr, error)
	NetIfaceStats() (map[string]RawIfaceStats, error)
	Users() ([]RawUser, error)

	// Connections returns sockets owned by pid, or every socket on the host
	// when pid <= 0.
	Connections(pid int32) ([]RawConn, error)

	// Per-process snapshots.
	ProcStat(pid int32) (RawProcStat, error)
	ProcStatus(pid int32) (RawProcStatus, error)
	ProcEnviron(pid int32) ([]byte, error)
	ProcIO(pid int32) (RawProcIO, error)
	ProcOpenFiles(pid int32) ([]RawOpenFile, error)
	ProcThreads(pid int32) ([]RawThread, error)
	ProcIOPriority(pid int32) (RawIOPriority, error)
}
