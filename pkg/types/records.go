package types

// Record values returned by the query API. Every type here is a plain value
// struct: construct it, read it, drop it. Nothing in this package mutates a
// record after it has been built, and equality is structural (== works).
//
// Field order is part of the public contract. Callers are allowed to rely on
// the declared order when destructuring records positionally (struct literal
// without field names, reflection-based dumpers, column output), so fields
// must never be reordered, added in the middle, or removed.

// SwapMemory describes swap space usage, in bytes. Sin and Sout are the
// cumulative number of bytes the system has swapped in from disk and swapped
// out to disk since boot.
type SwapMemory struct {
	Total       uint64  `json:"total" yaml:"total"`
	Used        uint64  `json:"used" yaml:"used"`
	Free        uint64  `json:"free" yaml:"free"`
	UsedPercent float64 `json:"percent" yaml:"percent"`
	Sin         uint64  `json:"sin" yaml:"sin"`
	Sout        uint64  `json:"sout" yaml:"sout"`
}

// DiskUsage describes usage of the filesystem containing a given path,
// in bytes.
type DiskUsage struct {
	Total       uint64  `json:"total" yaml:"total"`
	Used        uint64  `json:"used" yaml:"used"`
	Free        uint64  `json:"free" yaml:"free"`
	UsedPercent float64 `json:"percent" yaml:"percent"`
}

// DiskIOCounters holds cumulative I/O statistics for one block device.
// Counts are operations, bytes are bytes, times are milliseconds spent
// reading/writing since boot.
type DiskIOCounters struct {
	ReadCount  uint64 `json:"read_count" yaml:"read_count"`
	WriteCount uint64 `json:"write_count" yaml:"write_count"`
	ReadBytes  uint64 `json:"read_bytes" yaml:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes" yaml:"write_bytes"`
	ReadTime   uint64 `json:"read_time" yaml:"read_time"`
	WriteTime  uint64 `json:"write_time" yaml:"write_time"`
}

// DiskPartition describes one mounted filesystem.
type DiskPartition struct {
	Device     string `json:"device" yaml:"device"`
	Mountpoint string `json:"mountpoint" yaml:"mountpoint"`
	Fstype     string `json:"fstype" yaml:"fstype"`
	Opts       string `json:"opts" yaml:"opts"`
}

// NetIOCounters holds cumulative network I/O statistics, either system-wide
// totals or for a single interface.
type NetIOCounters struct {
	BytesSent   uint64 `json:"bytes_sent" yaml:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv" yaml:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent" yaml:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv" yaml:"packets_recv"`
	Errin       uint64 `json:"errin" yaml:"errin"`
	Errout      uint64 `json:"errout" yaml:"errout"`
	Dropin      uint64 `json:"dropin" yaml:"dropin"`
	Dropout     uint64 `json:"dropout" yaml:"dropout"`
}

// User describes one logged-in user session. Started is seconds since the
// epoch.
type User struct {
	Name     string  `json:"name" yaml:"name"`
	Terminal string  `json:"terminal" yaml:"terminal"`
	Host     string  `json:"host" yaml:"host"`
	Started  float64 `json:"started" yaml:"started"`
}

// Addr is one endpoint of a connection. For UNIX-domain sockets IP holds the
// filesystem path and Port is zero.
type Addr struct {
	IP   string `json:"ip" yaml:"ip"`
	Port uint32 `json:"port" yaml:"port"`
}

// Connection describes one socket. Pid is populated only by the system-wide
// listing; the per-process listing leaves it zero because the owner is
// implied by the handle the caller asked.
type Connection struct {
	Fd     int32    `json:"fd" yaml:"fd"`
	Family Family   `json:"family" yaml:"family"`
	Type   SockType `json:"type" yaml:"type"`
	Laddr  Addr     `json:"laddr" yaml:"laddr"`
	Raddr  Addr     `json:"raddr" yaml:"raddr"`
	Status string   `json:"status" yaml:"status"`
	Pid    int32    `json:"pid" yaml:"pid"`
}

// InterfaceAddr is one address assigned to a network interface.
type InterfaceAddr struct {
	Family    Family `json:"family" yaml:"family"`
	Address   string `json:"address" yaml:"address"`
	Netmask   string `json:"netmask" yaml:"netmask"`
	Broadcast string `json:"broadcast" yaml:"broadcast"`
	PTP       string `json:"ptp" yaml:"ptp"`
}

// InterfaceStats holds link-level information about a network interface.
// Speed is in Mbit/s, zero when the interface does not report one.
type InterfaceStats struct {
	IsUp   bool   `json:"isup" yaml:"isup"`
	Duplex Duplex `json:"duplex" yaml:"duplex"`
	Speed  uint64 `json:"speed" yaml:"speed"`
	MTU    int    `json:"mtu" yaml:"mtu"`
}

// CPUTimes holds accumulated CPU time of a process, in seconds.
type CPUTimes struct {
	User   float64 `json:"user" yaml:"user"`
	System float64 `json:"system" yaml:"system"`
}

// OpenFile is one regular file a process holds open.
type OpenFile struct {
	Path string `json:"path" yaml:"path"`
	Fd   int32  `json:"fd" yaml:"fd"`
}

// Thread holds per-thread CPU times of a process, in seconds.
type Thread struct {
	ID         int32   `json:"id" yaml:"id"`
	UserTime   float64 `json:"user_time" yaml:"user_time"`
	SystemTime float64 `json:"system_time" yaml:"system_time"`
}

// UserIDs holds the real, effective and saved user ids of a process.
type UserIDs struct {
	Real      int32 `json:"real" yaml:"real"`
	Effective int32 `json:"effective" yaml:"effective"`
	Saved     int32 `json:"saved" yaml:"saved"`
}

// GroupIDs holds the real, effective and saved group ids of a process.
type GroupIDs struct {
	Real      int32 `json:"real" yaml:"real"`
	Effective int32 `json:"effective" yaml:"effective"`
	Saved     int32 `json:"saved" yaml:"saved"`
}

// ProcIOCounters holds cumulative I/O statistics of a process. Counts are
// read/write syscalls issued, bytes are bytes actually hitting the storage
// layer.
type ProcIOCounters struct {
	ReadCount  uint64 `json:"read_count" yaml:"read_count"`
	WriteCount uint64 `json:"write_count" yaml:"write_count"`
	ReadBytes  uint64 `json:"read_bytes" yaml:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes" yaml:"write_bytes"`
}

// IOPriority holds the I/O scheduling class and per-class priority value of
// a process.
type IOPriority struct {
	Class int32 `json:"class" yaml:"class"`
	Value int32 `json:"value" yaml:"value"`
}

// CtxSwitches holds the number of voluntary and involuntary context switches
// a process has performed.
type CtxSwitches struct {
	Voluntary   int64 `json:"voluntary" yaml:"voluntary"`
	Involuntary int64 `json:"involuntary" yaml:"involuntary"`
}
