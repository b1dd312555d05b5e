//go:build linux

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/drmaq/psutil/pkg/system/backend"
)

// ErrMalformedStat indicates a stat file that does not follow the
// "pid (comm) state ..." layout.
var ErrMalformedStat = fmt.Errorf("procfs: malformed stat")

// ProcStat parses /proc/<pid>/stat. The comm field is in parens and may
// itself contain spaces and parens, so everything up to the last ") " is
// treated as pid+comm and the numeric fields are indexed after it.
func (fs *FS) ProcStat(pid int32) (backend.RawProcStat, error) {
	b, err := os.ReadFile(fs.pidPath(pid, "stat"))
	if err != nil {
		return backend.RawProcStat{}, err
	}
	return parseProcStat(string(b))
}

func parseProcStat(line string) (backend.RawProcStat, error) {
	open := strings.Index(line, "(")
	end := strings.LastIndex(line, ") ")
	if open < 0 || end < open {
		return backend.RawProcStat{}, ErrMalformedStat
	}
	raw := backend.RawProcStat{Name: line[open+1 : end]}

	// fields after ") ": state ppid pgrp session tty tpgid flags minflt
	// cminflt majflt cmajflt utime stime ... starttime is the 20th
	flds := strings.Fields(line[end+2:])
	if len(flds) < 20 {
		return backend.RawProcStat{}, ErrMalformedStat
	}
	raw.State = flds[0][0]
	ppid, _ := strconv.ParseInt(flds[1], 10, 32)
	raw.Ppid = int32(ppid)
	raw.Utime, _ = strconv.ParseUint(flds[11], 10, 64)
	raw.Stime, _ = strconv.ParseUint(flds[12], 10, 64)
	raw.StartTicks, _ = strconv.ParseUint(flds[19], 10, 64)
	return raw, nil
}

// ProcStatus parses the Uid/Gid and context-switch lines of
// /proc/<pid>/status.
func (fs *FS) ProcStatus(pid int32) (backend.RawProcStatus, error) {
	f, err := os.Open(fs.pidPath(pid, "status"))
	if err != nil {
		return backend.RawProcStatus{}, err
	}
	defer f.Close()

	var raw backend.RawProcStatus
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) < 2 {
			continue
		}
		switch flds[0] {
		case "Uid:":
			raw.UIDs = parseIDTriple(flds[1:])
		case "Gid:":
			raw.GIDs = parseIDTriple(flds[1:])
		case "voluntary_ctxt_switches:":
			raw.VoluntaryCtxSwitches, _ = strconv.ParseInt(flds[1], 10, 64)
		case "nonvoluntary_ctxt_switches:":
			raw.InvoluntaryCtxSwitches, _ = strconv.ParseInt(flds[1], 10, 64)
		}
	}
	return raw, sc.Err()
}

// parseIDTriple reads real/effective/saved from a Uid:/Gid: line (the
// fourth, filesystem id, is not part of the record contract).
func parseIDTriple(flds []string) [3]int32 {
	var out [3]int32
	for i := 0; i < 3 && i < len(flds); i++ {
		v, _ := strconv.ParseInt(flds[i], 10, 32)
		out[i] = int32(v)
	}
	return out
}

// ProcEnviron returns the raw NUL-delimited environment block, unparsed.
func (fs *FS) ProcEnviron(pid int32) ([]byte, error) {
	return os.ReadFile(fs.pidPath(pid, "environ"))
}

// ProcIO parses /proc/<pid>/io. Kernel threads do not expose the file.
func (fs *FS) ProcIO(pid int32) (backend.RawProcIO, error) {
	f, err := os.Open(fs.pidPath(pid, "io"))
	if err != nil {
		return backend.RawProcIO{}, err
	}
	defer f.Close()

	var raw backend.RawProcIO
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		v, _ := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
		switch key {
		case "syscr":
			raw.Syscr = v
		case "syscw":
			raw.Syscw = v
		case "read_bytes":
			raw.ReadBytes = v
		case "write_bytes":
			raw.WriteBytes = v
		}
	}
	return raw, sc.Err()
}

// ProcOpenFiles resolves the fd symlinks of the process and keeps those
// that point at regular files (sockets, pipes and anon inodes are listed by
// Connections or not at all).
func (fs *FS) ProcOpenFiles(pid int32) ([]backend.RawOpenFile, error) {
	entries, err := os.ReadDir(fs.pidPath(pid, "fd"))
	if err != nil {
		return nil, err
	}
	var out []backend.RawOpenFile
	for _, e := range entries {
		link, err := os.Readlink(fs.pidPath(pid, "fd", e.Name()))
		if err != nil || !strings.HasPrefix(link, "/") {
			continue
		}
		st, err := os.Stat(link)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}
		fd, err := strconv.ParseInt(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		out = append(out, backend.RawOpenFile{Path: link, Fd: int32(fd)})
	}
	return out, nil
}

// ProcThreads reads per-thread CPU ticks from /proc/<pid>/task/*/stat.
// Threads that exit mid-scan are skipped.
func (fs *FS) ProcThreads(pid int32) ([]backend.RawThread, error) {
	taskDir := fs.pidPath(pid, "task")
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return nil, err
	}
	var out []backend.RawThread
	for _, e := range entries {
		tid, err := strconv.ParseInt(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		b, err := os.ReadFile(fs.pidPath(pid, "task", e.Name(), "stat"))
		if err != nil {
			continue
		}
		st, err := parseProcStat(string(b))
		if err != nil {
			continue
		}
		out = append(out, backend.RawThread{
			ID:    int32(tid),
			Utime: st.Utime,
			Stime: st.Stime,
		})
	}
	return out, nil
}

const (
	ioprioWhoProcess = 1
	ioprioClassShift = 13
)

// ProcIOPriority queries the I/O scheduling class and value through the
// ioprio_get syscall; there is no procfs file for it.
func (fs *FS) ProcIOPriority(pid int32) (backend.RawIOPriority, error) {
	r1, _, errno := unix.Syscall(unix.SYS_IOPRIO_GET, ioprioWhoProcess, uintptr(pid), 0)
	if errno != 0 {
		return backend.RawIOPriority{}, errno
	}
	prio := int32(r1)
	return backend.RawIOPriority{
		Class: prio >> ioprioClassShift,
		Value: prio & ((1 << ioprioClassShift) - 1),
	}, nil
}
