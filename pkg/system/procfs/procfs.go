//go:build linux

// Package procfs is the Linux backend driver: it reads the raw snapshots the
// normalization layer asks for out of /proc and /sys, plus a handful of
// syscalls where the kernel offers no file. It performs no caching, no
// failure classification and no record shaping; those belong to the layer
// above.
package procfs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FS reads the procfs and sysfs trees under configurable roots, so tests
// can point it at a fixture directory. New returns the real thing.
type FS struct {
	proc   string
	sysNet string
	utmp   string
}

// New returns a driver over the live /proc and /sys.
func New() *FS {
	return NewAt("/proc", "/sys/class/net", "/var/run/utmp")
}

// NewAt returns a driver rooted at the given paths.
func NewAt(proc, sysNet, utmp string) *FS {
	return &FS{proc: proc, sysNet: sysNet, utmp: utmp}
}

func (fs *FS) path(elem ...string) string {
	return filepath.Join(append([]string{fs.proc}, elem...)...)
}

func (fs *FS) pidPath(pid int32, elem ...string) string {
	return fs.path(append([]string{strconv.Itoa(int(pid))}, elem...)...)
}

// ClockTicks returns jiffies per second. The env override (CLK_TCK) exists
// for testing; the common default is 100 and reading the real value needs
// cgo, which this library avoids.
func (fs *FS) ClockTicks() int {
	if v, _ := strconv.Atoi(os.Getenv("CLK_TCK")); v > 0 {
		return v
	}
	return 100
}

// PageSize returns the memory page size in bytes, with a PAGE_SIZE env
// override for testing.
func (fs *FS) PageSize() int {
	if ps := os.Getenv("PAGE_SIZE"); ps != "" {
		if v, _ := strconv.Atoi(ps); v > 0 {
			return v
		}
	}
	return os.Getpagesize()
}

// BootTime returns the epoch second the host booted, from the btime line of
// /proc/stat.
func (fs *FS) BootTime() (float64, error) {
	f, err := os.Open(fs.path("stat"))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) == 2 && flds[0] == "btime" {
			return strconv.ParseFloat(flds[1], 64)
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("procfs: no btime in %s", fs.path("stat"))
}

// Pids lists the numeric entries of the proc root, sorted ascending.
func (fs *FS) Pids() ([]int32, error) {
	entries, err := os.ReadDir(fs.proc)
	if err != nil {
		return nil, err
	}
	pids := make([]int32, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if pid, err := strconv.ParseInt(e.Name(), 10, 32); err == nil {
			pids = append(pids, int32(pid))
		}
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids, nil
}

// PidExists reports whether the pid directory is present.
func (fs *FS) PidExists(pid int32) (bool, error) {
	_, err := os.Stat(fs.pidPath(pid))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsZombie reports whether the pid exists but is in state Z.
func (fs *FS) IsZombie(pid int32) (bool, error) {
	raw, err := fs.ProcStat(pid)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return raw.State == 'Z', nil
}
