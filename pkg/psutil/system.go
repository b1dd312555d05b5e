// Package psutil is the portable face of the library: typed queries for
// memory, disk, network, login and per-process state, uniform across
// platform backends. It owns no OS access of its own; a backend produces
// raw snapshots and this package normalizes them into the record types,
// classifies failures into the error taxonomy, and guards multi-step
// process queries against pid reuse.
package psutil

import (
	"errors"
	"io/fs"
	"sync"
	"syscall"

	"github.com/drmaq/psutil/pkg/pscache"
	"github.com/drmaq/psutil/pkg/system/backend"
	"github.com/drmaq/psutil/pkg/types"
)

// System binds a backend to a platform capability description. All queries
// hang off it; the zero value is not usable, construct with NewSystem or use
// Default.
type System struct {
	be    backend.Backend
	plat  Platform
	kinds map[string]connFilter

	// bootTime is queried once per System; the host does not reboot under a
	// running process.
	bootCache *pscache.Cache[struct{}, float64]
}

// NewSystem wires a backend and platform description together. The
// connection-kind table is built here, once, from the platform capabilities
// and is read-only afterwards.
func NewSystem(be backend.Backend, plat Platform) *System {
	return &System{
		be:        be,
		plat:      plat,
		kinds:     connKindTable(plat),
		bootCache: pscache.New[struct{}, float64](),
	}
}

var (
	defaultOnce sync.Once
	defaultSys  *System
)

// Default returns the process-wide System built from the native backend for
// this OS and the detected platform capabilities.
func Default() *System {
	defaultOnce.Do(func() {
		defaultSys = NewSystem(nativeBackend(), DetectPlatform())
	})
	return defaultSys
}

// Platform returns the capability description this System was built with.
func (s *System) Platform() Platform { return s.plat }

// classify maps recognizable backend failures into the taxonomy: a missing
// procfs entry means the process is gone, a permission failure means access
// denied. Everything else is an environment or programming error and
// propagates unmodified.
func classify(err error, pid int32, name string) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ESRCH):
		return NewNotFound(pid, name)
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return NewAccessDenied(pid, name)
	}
	return err
}

// BootTime returns the host boot time in seconds since the epoch.
func (s *System) BootTime() (float64, error) {
	return s.bootCache.GetOrCompute(struct{}{}, s.be.BootTime)
}

// SwapMemory reports swap space usage.
func (s *System) SwapMemory() (types.SwapMemory, error) {
	raw, err := s.be.SwapMemory()
	if err != nil {
		return types.SwapMemory{}, err
	}
	total := raw.TotalKB * 1024
	free := raw.FreeKB * 1024
	used := total - free
	page := uint64(raw.PageSize)
	return types.SwapMemory{
		Total:       total,
		Used:        used,
		Free:        free,
		UsedPercent: types.UsagePercentRound(used, total, 1),
		Sin:         raw.PagesIn * page,
		Sout:        raw.PagesOut * page,
	}, nil
}

// DiskUsage reports usage of the filesystem containing path. Used space is
// measured against total minus root-reserved blocks, the same accounting df
// shows, so the percentage can exceed what total-free would suggest.
func (s *System) DiskUsage(path string) (types.DiskUsage, error) {
	raw, err := s.be.DiskUsage(path)
	if err != nil {
		// a bad path is a caller error, not a taxonomy condition
		return types.DiskUsage{}, err
	}
	total := raw.Blocks * raw.Bsize
	free := raw.Bavail * raw.Bsize
	used := (raw.Blocks - raw.Bfree) * raw.Bsize
	return types.DiskUsage{
		Total:       total,
		Used:        used,
		Free:        free,
		UsedPercent: types.UsagePercentRound(used, used+free, 1),
	}, nil
}

// DiskIOCounters reports cumulative I/O per block device. Sector counts are
// converted to bytes using the kernel's fixed 512-byte sector unit.
func (s *System) DiskIOCounters() (map[string]types.DiskIOCounters, error) {
	raw, err := s.be.DiskIOCounters()
	if err != nil {
		return nil, err
	}
	const sectorSize = 512
	out := make(map[string]types.DiskIOCounters, len(raw))
	for dev, r := range raw {
		out[dev] = types.DiskIOCounters{
			ReadCount:  r.ReadCount,
			WriteCount: r.WriteCount,
			ReadBytes:  r.ReadSectors * sectorSize,
			WriteBytes: r.WriteSectors * sectorSize,
			ReadTime:   r.ReadTimeMS,
			WriteTime:  r.WriteTimeMS,
		}
	}
	return out, nil
}

// DiskPartitions lists mounted filesystems. With all false, virtual mounts
// (proc, sysfs, tmpfs and friends) are filtered out by the backend.
func (s *System) DiskPartitions(all bool) ([]types.DiskPartition, error) {
	raw, err := s.be.DiskPartitions(all)
	if err != nil {
		return nil, err
	}
	out := make([]types.DiskPartition, 0, len(raw))
	for _, r := range raw {
		out = append(out, types.DiskPartition{
			Device:     r.Device,
			Mountpoint: r.Mountpoint,
			Fstype:     r.Fstype,
			Opts:       r.Opts,
		})
	}
	return out, nil
}

// NetIOCounters reports system-wide network I/O summed over all interfaces.
func (s *System) NetIOCounters() (types.NetIOCounters, error) {
	per, err := s.NetIOCountersPerNIC()
	if err != nil {
		return types.NetIOCounters{}, err
	}
	var sum types.NetIOCounters
	for _, c := range per {
		sum.BytesSent += c.BytesSent
		sum.BytesRecv += c.BytesRecv
		sum.PacketsSent += c.PacketsSent
		sum.PacketsRecv += c.PacketsRecv
		sum.Errin += c.Errin
		sum.Errout += c.Errout
		sum.Dropin += c.Dropin
		sum.Dropout += c.Dropout
	}
	return sum, nil
}

// NetIOCountersPerNIC reports network I/O for each interface separately.
func (s *System) NetIOCountersPerNIC() (map[string]types.NetIOCounters, error) {
	raw, err := s.be.NetIOCounters()
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.NetIOCounters, len(raw))
	for name, r := range raw {
		out[name] = types.NetIOCounters{
			BytesSent:   r.BytesSent,
			BytesRecv:   r.BytesRecv,
			PacketsSent: r.PacketsSent,
			PacketsRecv: r.PacketsRecv,
			Errin:       r.Errin,
			Errout:      r.Errout,
			Dropin:      r.Dropin,
			Dropout:     r.Dropout,
		}
	}
	return out, nil
}

// NetIfaceAddrs lists addresses assigned to each interface, keyed by
// interface name.
func (s *System) NetIfaceAddrs() (map[string][]types.InterfaceAddr, error) {
	raw, err := s.be.NetIfaceAddrs()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]types.InterfaceAddr)
	for _, r := range raw {
		out[r.Iface] = append(out[r.Iface], types.InterfaceAddr{
			Family:    types.Family(r.Family),
			Address:   r.Addr,
			Netmask:   r.Netmask,
			Broadcast: r.Broadcast,
			PTP:       r.PTP,
		})
	}
	return out, nil
}

// NetIfaceStats reports link-level state per interface.
func (s *System) NetIfaceStats() (map[string]types.InterfaceStats, error) {
	raw, err := s.be.NetIfaceStats()
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.InterfaceStats, len(raw))
	for name, r := range raw {
		out[name] = types.InterfaceStats{
			IsUp:   r.IsUp,
			Duplex: types.Duplex(r.Duplex),
			Speed:  r.Speed,
			MTU:    r.MTU,
		}
	}
	return out, nil
}

// Users lists currently logged-in user sessions.
func (s *System) Users() ([]types.User, error) {
	raw, err := s.be.Users()
	if err != nil {
		return nil, err
	}
	out := make([]types.User, 0, len(raw))
	for _, r := range raw {
		out = append(out, types.User{
			Name:     r.User,
			Terminal: r.Line,
			Host:     r.Host,
			Started:  r.Tv,
		})
	}
	return out, nil
}

// Connections lists every socket on the host matching kind, with the owning
// pid attributed where the backend can determine it. The kind keyword is
// resolved before the backend is consulted.
func (s *System) Connections(kind string) ([]types.Connection, error) {
	f, err := s.resolveKind(kind)
	if err != nil {
		return nil, err
	}
	raw, err := s.be.Connections(-1)
	if err != nil {
		return nil, classify(err, 0, "")
	}
	return filterConns(raw, f, true), nil
}

// Pids returns the pids currently in the process table, sorted by the
// backend's natural order.
func (s *System) Pids() ([]int32, error) {
	return s.be.Pids()
}

// PidExists reports whether pid is currently in the process table.
func (s *System) PidExists(pid int32) (bool, error) {
	return s.be.PidExists(pid)
}

// Processes returns a handle for every pid in the table. Processes that
// vanish between the table scan and handle construction are skipped.
func (s *System) Processes() ([]*Process, error) {
	pids, err := s.Pids()
	if err != nil {
		return nil, err
	}
	out := make([]*Process, 0, len(pids))
	for _, pid := range pids {
		p, err := s.NewProcess(pid)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
