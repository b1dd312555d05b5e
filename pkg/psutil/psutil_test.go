package psutil

import (
	"io/fs"
	"syscall"

	"github.com/drmaq/psutil/pkg/system/backend"
)

// fakeBackend is an in-memory driver for exercising the normalization layer
// without an OS underneath. Zero-valued maps mean "no such pid"; the err
// fields force failures per call.
type fakeBackend struct {
	boot  float64
	ticks int
	page  int

	pids    []int32
	stats   map[int32]backend.RawProcStat
	statErr map[int32]error
	zombies map[int32]bool

	status  map[int32]backend.RawProcStatus
	environ map[int32][]byte
	procIO  map[int32]backend.RawProcIO
	files   map[int32][]backend.RawOpenFile
	threads map[int32][]backend.RawThread
	ioprio  map[int32]backend.RawIOPriority

	swap    backend.RawSwap
	swapErr error
	usage   backend.RawDiskUsage
	diskIO  map[string]backend.RawDiskIO
	parts   []backend.RawPartition
	netIO   map[string]backend.RawNetIO
	addrs   []backend.RawIfaceAddr
	ifstats map[string]backend.RawIfaceStats
	users   []backend.RawUser

	conns   []backend.RawConn
	connErr error

	// connCalls counts Connections invocations, to prove kind resolution
	// happens before the backend is touched.
	connCalls int
	statCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		boot:    1_700_000_000,
		ticks:   100,
		page:    4096,
		stats:   map[int32]backend.RawProcStat{},
		statErr: map[int32]error{},
		zombies: map[int32]bool{},
		status:  map[int32]backend.RawProcStatus{},
		environ: map[int32][]byte{},
		procIO:  map[int32]backend.RawProcIO{},
		files:   map[int32][]backend.RawOpenFile{},
		threads: map[int32][]backend.RawThread{},
		ioprio:  map[int32]backend.RawIOPriority{},
	}
}

// addProc registers a live process whose creation time works out to
// boot + startTicks/ticks.
func (f *fakeBackend) addProc(pid int32, name string, startTicks uint64) {
	f.pids = append(f.pids, pid)
	f.stats[pid] = backend.RawProcStat{
		Name: name, State: 'S', Ppid: 1,
		Utime: 150, Stime: 50, StartTicks: startTicks,
	}
}

func (f *fakeBackend) BootTime() (float64, error) { return f.boot, nil }
func (f *fakeBackend) ClockTicks() int            { return f.ticks }
func (f *fakeBackend) PageSize() int              { return f.page }

func (f *fakeBackend) Pids() ([]int32, error) { return f.pids, nil }

func (f *fakeBackend) PidExists(pid int32) (bool, error) {
	_, ok := f.stats[pid]
	return ok, nil
}

func (f *fakeBackend) IsZombie(pid int32) (bool, error) { return f.zombies[pid], nil }

func (f *fakeBackend) SwapMemory() (backend.RawSwap, error) {
	return f.swap, f.swapErr
}

func (f *fakeBackend) DiskUsage(string) (backend.RawDiskUsage, error) { return f.usage, nil }

func (f *fakeBackend) DiskIOCounters() (map[string]backend.RawDiskIO, error) {
	return f.diskIO, nil
}

func (f *fakeBackend) DiskPartitions(bool) ([]backend.RawPartition, error) {
	return f.parts, nil
}

func (f *fakeBackend) NetIOCounters() (map[string]backend.RawNetIO, error) {
	return f.netIO, nil
}

func (f *fakeBackend) NetIfaceAddrs() ([]backend.RawIfaceAddr, error) { return f.addrs, nil }

func (f *fakeBackend) NetIfaceStats() (map[string]backend.RawIfaceStats, error) {
	return f.ifstats, nil
}

func (f *fakeBackend) Users() ([]backend.RawUser, error) { return f.users, nil }

func (f *fakeBackend) Connections(pid int32) ([]backend.RawConn, error) {
	f.connCalls++
	if f.connErr != nil {
		return nil, f.connErr
	}
	if pid <= 0 {
		return f.conns, nil
	}
	var out []backend.RawConn
	for _, c := range f.conns {
		if c.Pid == pid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeBackend) ProcStat(pid int32) (backend.RawProcStat, error) {
	f.statCalls++
	if err := f.statErr[pid]; err != nil {
		return backend.RawProcStat{}, err
	}
	st, ok := f.stats[pid]
	if !ok {
		return backend.RawProcStat{}, fs.ErrNotExist
	}
	return st, nil
}

func (f *fakeBackend) ProcStatus(pid int32) (backend.RawProcStatus, error) {
	st, ok := f.status[pid]
	if !ok {
		return backend.RawProcStatus{}, fs.ErrNotExist
	}
	return st, nil
}

func (f *fakeBackend) ProcEnviron(pid int32) ([]byte, error) {
	env, ok := f.environ[pid]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return env, nil
}

func (f *fakeBackend) ProcIO(pid int32) (backend.RawProcIO, error) {
	io, ok := f.procIO[pid]
	if !ok {
		return backend.RawProcIO{}, fs.ErrNotExist
	}
	return io, nil
}

func (f *fakeBackend) ProcOpenFiles(pid int32) ([]backend.RawOpenFile, error) {
	of, ok := f.files[pid]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return of, nil
}

func (f *fakeBackend) ProcThreads(pid int32) ([]backend.RawThread, error) {
	th, ok := f.threads[pid]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return th, nil
}

func (f *fakeBackend) ProcIOPriority(pid int32) (backend.RawIOPriority, error) {
	pr, ok := f.ioprio[pid]
	if !ok {
		return backend.RawIOPriority{}, syscall.ESRCH
	}
	return pr, nil
}

// allCaps is a platform with every capability, the common test fixture.
var allCaps = Platform{OS: "linux", HasIPv6: true, HasUnixSockets: true}

func newTestSystem(f *fakeBackend) *System {
	return NewSystem(f, allCaps)
}
