package psutil

import (
	"time"

	"github.com/drmaq/psutil/pkg/system/envblock"
	"github.com/drmaq/psutil/pkg/types"
)

// Ident is the compound identity of a process: its pid plus the time it was
// created, in seconds since the epoch. Pids are recycled by every OS, so the
// pid alone never identifies a process across time; the pair does. Ident is
// comparable and usable as a map key.
type Ident struct {
	Pid        int32
	CreateTime float64
}

// Process is a handle on one process. The handle captures the process
// identity at construction and re-validates it after every query that
// touches the backend, so a pid recycled mid-sequence surfaces as NotFound
// instead of data from the wrong process.
//
// Comparing or hashing a handle never touches the backend.
type Process struct {
	sys   *System
	ident Ident
	name  string // best-effort, for error context
}

// NewProcess builds a handle for pid. The process must exist; a zombie or a
// process the caller cannot inspect still gets a handle, with an identity
// that cannot include the creation time.
func (s *System) NewProcess(pid int32) (*Process, error) {
	p := &Process{sys: s, ident: Ident{Pid: pid}}
	ct, err := s.createTime(pid)
	switch {
	case err == nil:
		p.ident.CreateTime = ct
	case IsZombie(err) || IsAccessDenied(err):
		// identity stays partial; operations needing the backend will
		// report the condition themselves
	default:
		return nil, err
	}
	if raw, err := s.be.ProcStat(pid); err == nil {
		p.name = raw.Name
	}
	return p, nil
}

// createTime derives the epoch creation time of pid from the backend's
// tick-based start time.
func (s *System) createTime(pid int32) (float64, error) {
	raw, err := s.be.ProcStat(pid)
	if err != nil {
		return 0, s.classifyProc(err, pid, "")
	}
	boot, err := s.BootTime()
	if err != nil {
		return 0, err
	}
	return boot + float64(raw.StartTicks)/float64(s.be.ClockTicks()), nil
}

// classifyProc turns a backend failure for pid into a taxonomy error,
// distinguishing a zombie (entry present but most files unreadable or empty)
// from a process that is gone entirely.
func (s *System) classifyProc(err error, pid int32, name string) error {
	cerr := classify(err, pid, name)
	if !IsNotFound(cerr) {
		return cerr
	}
	if z, zerr := s.be.IsZombie(pid); zerr == nil && z {
		return NewZombie(pid, name, 0)
	}
	return cerr
}

// Pid returns the pid this handle was built for.
func (p *Process) Pid() int32 { return p.ident.Pid }

// Ident returns the identity captured at construction. A zero CreateTime
// means the identity could not be fully established (zombie or access
// denied at construction).
func (p *Process) Ident() Ident { return p.ident }

// Equal reports whether two handles designate the same process: both
// identity components must match exactly. A nil other is never equal.
func (p *Process) Equal(other *Process) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ident == other.ident
}

// verify re-reads the creation time for the pid and compares it with the
// identity captured at construction. A mismatch means the pid now belongs
// to a different process and the data gathered alongside is not ours.
func (p *Process) verify() error {
	if p.ident.CreateTime == 0 {
		// partial identity, nothing to compare against
		return nil
	}
	ct, err := p.sys.createTime(p.ident.Pid)
	if err != nil {
		return err
	}
	if ct != p.ident.CreateTime {
		return NewNotFound(p.ident.Pid, p.name)
	}
	return nil
}

// classify wraps a backend failure with this handle's context.
func (p *Process) classify(err error) error {
	return p.sys.classifyProc(err, p.ident.Pid, p.name)
}

// Name returns the process name.
func (p *Process) Name() (string, error) {
	raw, err := p.sys.be.ProcStat(p.ident.Pid)
	if err != nil {
		return "", p.classify(err)
	}
	if err := p.verify(); err != nil {
		return "", err
	}
	p.name = raw.Name
	return raw.Name, nil
}

// Ppid returns the parent pid. Unlike the identity, the parent can change
// over the process lifetime (reparenting after the parent exits).
func (p *Process) Ppid() (int32, error) {
	raw, err := p.sys.be.ProcStat(p.ident.Pid)
	if err != nil {
		return 0, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return 0, err
	}
	return raw.Ppid, nil
}

// Parent returns a handle on the parent process.
func (p *Process) Parent() (*Process, error) {
	ppid, err := p.Ppid()
	if err != nil {
		return nil, err
	}
	return p.sys.NewProcess(ppid)
}

// Children returns handles for the direct children of this process, found
// by scanning the process table for entries whose parent is this pid.
func (p *Process) Children() ([]*Process, error) {
	pids, err := p.sys.Pids()
	if err != nil {
		return nil, err
	}
	var out []*Process
	for _, pid := range pids {
		raw, err := p.sys.be.ProcStat(pid)
		if err != nil || raw.Ppid != p.ident.Pid {
			continue
		}
		child, err := p.sys.NewProcess(pid)
		if err != nil {
			continue
		}
		out = append(out, child)
	}
	if err := p.verify(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTime returns the identity creation time, in seconds since the epoch.
func (p *Process) CreateTime() (float64, error) {
	if p.ident.CreateTime != 0 {
		return p.ident.CreateTime, nil
	}
	return p.sys.createTime(p.ident.Pid)
}

// Status returns the process state as one of the types.Status* strings.
func (p *Process) Status() (string, error) {
	raw, err := p.sys.be.ProcStat(p.ident.Pid)
	if err != nil {
		return "", p.classify(err)
	}
	if err := p.verify(); err != nil {
		return "", err
	}
	return statusString(raw.State), nil
}

func statusString(state byte) string {
	switch state {
	case 'R':
		return types.StatusRunning
	case 'S':
		return types.StatusSleeping
	case 'D':
		return types.StatusDiskSleep
	case 'T':
		return types.StatusStopped
	case 't':
		return types.StatusTracingStop
	case 'Z':
		return types.StatusZombie
	case 'X', 'x':
		return types.StatusDead
	case 'W':
		return types.StatusWaking
	case 'I':
		return types.StatusIdle
	case 'P':
		return types.StatusParked
	}
	return "unknown"
}

// CPUTimes returns accumulated user and system CPU time in seconds.
func (p *Process) CPUTimes() (types.CPUTimes, error) {
	raw, err := p.sys.be.ProcStat(p.ident.Pid)
	if err != nil {
		return types.CPUTimes{}, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return types.CPUTimes{}, err
	}
	ticks := float64(p.sys.be.ClockTicks())
	return types.CPUTimes{
		User:   float64(raw.Utime) / ticks,
		System: float64(raw.Stime) / ticks,
	}, nil
}

// Environ returns the process environment. The raw block comes from the
// backend untouched and is decoded here; malformed or truncated entries are
// dropped, not failed on.
func (p *Process) Environ() (map[string]string, error) {
	raw, err := p.sys.be.ProcEnviron(p.ident.Pid)
	if err != nil {
		return nil, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return nil, err
	}
	return envblock.Parse(raw, p.sys.plat.UppercaseEnv), nil
}

// IOCounters returns cumulative I/O accounting for the process.
func (p *Process) IOCounters() (types.ProcIOCounters, error) {
	raw, err := p.sys.be.ProcIO(p.ident.Pid)
	if err != nil {
		return types.ProcIOCounters{}, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return types.ProcIOCounters{}, err
	}
	return types.ProcIOCounters{
		ReadCount:  raw.Syscr,
		WriteCount: raw.Syscw,
		ReadBytes:  raw.ReadBytes,
		WriteBytes: raw.WriteBytes,
	}, nil
}

// OpenFiles lists regular files the process holds open.
func (p *Process) OpenFiles() ([]types.OpenFile, error) {
	raw, err := p.sys.be.ProcOpenFiles(p.ident.Pid)
	if err != nil {
		return nil, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return nil, err
	}
	out := make([]types.OpenFile, 0, len(raw))
	for _, f := range raw {
		out = append(out, types.OpenFile{Path: f.Path, Fd: f.Fd})
	}
	return out, nil
}

// Threads returns per-thread CPU times.
func (p *Process) Threads() ([]types.Thread, error) {
	raw, err := p.sys.be.ProcThreads(p.ident.Pid)
	if err != nil {
		return nil, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return nil, err
	}
	ticks := float64(p.sys.be.ClockTicks())
	out := make([]types.Thread, 0, len(raw))
	for _, t := range raw {
		out = append(out, types.Thread{
			ID:         t.ID,
			UserTime:   float64(t.Utime) / ticks,
			SystemTime: float64(t.Stime) / ticks,
		})
	}
	return out, nil
}

// UIDs returns the real, effective and saved user ids.
func (p *Process) UIDs() (types.UserIDs, error) {
	raw, err := p.sys.be.ProcStatus(p.ident.Pid)
	if err != nil {
		return types.UserIDs{}, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return types.UserIDs{}, err
	}
	return types.UserIDs{Real: raw.UIDs[0], Effective: raw.UIDs[1], Saved: raw.UIDs[2]}, nil
}

// GIDs returns the real, effective and saved group ids.
func (p *Process) GIDs() (types.GroupIDs, error) {
	raw, err := p.sys.be.ProcStatus(p.ident.Pid)
	if err != nil {
		return types.GroupIDs{}, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return types.GroupIDs{}, err
	}
	return types.GroupIDs{Real: raw.GIDs[0], Effective: raw.GIDs[1], Saved: raw.GIDs[2]}, nil
}

// NumCtxSwitches returns voluntary and involuntary context switch counts.
func (p *Process) NumCtxSwitches() (types.CtxSwitches, error) {
	raw, err := p.sys.be.ProcStatus(p.ident.Pid)
	if err != nil {
		return types.CtxSwitches{}, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return types.CtxSwitches{}, err
	}
	return types.CtxSwitches{
		Voluntary:   raw.VoluntaryCtxSwitches,
		Involuntary: raw.InvoluntaryCtxSwitches,
	}, nil
}

// IOPriority returns the I/O scheduling class and value.
func (p *Process) IOPriority() (types.IOPriority, error) {
	raw, err := p.sys.be.ProcIOPriority(p.ident.Pid)
	if err != nil {
		return types.IOPriority{}, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return types.IOPriority{}, err
	}
	return types.IOPriority{Class: raw.Class, Value: raw.Value}, nil
}

// Connections lists this process's sockets matching kind. The kind keyword
// is resolved before the backend is consulted, so an invalid keyword never
// triggers a query. Pid is left zero in the records; the owner is this
// handle.
func (p *Process) Connections(kind string) ([]types.Connection, error) {
	f, err := p.sys.resolveKind(kind)
	if err != nil {
		return nil, err
	}
	raw, err := p.sys.be.Connections(p.ident.Pid)
	if err != nil {
		return nil, p.classify(err)
	}
	if err := p.verify(); err != nil {
		return nil, err
	}
	return filterConns(raw, f, false), nil
}

// IsRunning reports whether the process this handle identifies still
// exists: the pid must be present and the creation time unchanged.
func (p *Process) IsRunning() (bool, error) {
	ok, err := p.sys.be.PidExists(p.ident.Pid)
	if err != nil || !ok {
		return false, err
	}
	if p.ident.CreateTime == 0 {
		return true, nil
	}
	ct, err := p.sys.createTime(p.ident.Pid)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return ct == p.ident.CreateTime, nil
}

// waitPollInterval is how often Wait re-checks the process table.
const waitPollInterval = 40 * time.Millisecond

// Wait blocks until the process identified by this handle is gone, polling
// the process table. A zero timeout waits without limit; otherwise the
// deadline is enforced here at the call site and reported as
// TimeoutExpired.
func (p *Process) Wait(timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		running, err := p.IsRunning()
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return NewTimeoutExpired(timeout.Seconds(), p.ident.Pid, p.name)
		}
		time.Sleep(waitPollInterval)
	}
}
