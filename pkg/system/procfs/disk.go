//go:build linux

package procfs

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/drmaq/psutil/pkg/system/backend"
)

// DiskUsage returns the raw statfs block counts for the filesystem holding
// path.
func (fs *FS) DiskUsage(path string) (backend.RawDiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return backend.RawDiskUsage{}, &os.PathError{Op: "statfs", Path: path, Err: err}
	}
	return backend.RawDiskUsage{
		Blocks: st.Blocks,
		Bfree:  st.Bfree,
		Bavail: st.Bavail,
		Bsize:  uint64(st.Bsize),
	}, nil
}

// DiskIOCounters parses /proc/diskstats. Field layout per the kernel's
// Documentation/admin-guide/iostats.rst: after the three identifier fields
// come reads completed, reads merged, sectors read, ms reading, then the
// same four for writes.
func (fs *FS) DiskIOCounters() (map[string]backend.RawDiskIO, error) {
	f, err := os.Open(fs.path("diskstats"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]backend.RawDiskIO)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) < 11 {
			continue
		}
		u := func(i int) uint64 {
			v, _ := strconv.ParseUint(flds[i], 10, 64)
			return v
		}
		out[flds[2]] = backend.RawDiskIO{
			ReadCount:    u(3),
			ReadSectors:  u(5),
			ReadTimeMS:   u(6),
			WriteCount:   u(7),
			WriteSectors: u(9),
			WriteTimeMS:  u(10),
		}
	}
	return out, sc.Err()
}

// virtualFstypes are mount types filtered out of the default partition
// listing.
var virtualFstypes = map[string]struct{}{
	"proc": {}, "sysfs": {}, "devtmpfs": {}, "devpts": {}, "tmpfs": {},
	"cgroup": {}, "cgroup2": {}, "securityfs": {}, "debugfs": {},
	"tracefs": {}, "pstore": {}, "bpf": {}, "configfs": {}, "fusectl": {},
	"hugetlbfs": {}, "mqueue": {}, "overlay": {}, "autofs": {},
	"binfmt_misc": {}, "rpc_pipefs": {}, "ramfs": {}, "squashfs": {},
}

// DiskPartitions parses the mount table. With all false, virtual
// filesystems and pseudo devices are skipped.
func (fs *FS) DiskPartitions(all bool) ([]backend.RawPartition, error) {
	f, err := os.Open(fs.path("mounts"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []backend.RawPartition
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) < 4 {
			continue
		}
		device, mount, fstype, opts := flds[0], flds[1], flds[2], flds[3]
		if !all {
			if _, virt := virtualFstypes[fstype]; virt || !strings.HasPrefix(device, "/") {
				continue
			}
		}
		out = append(out, backend.RawPartition{
			Device:     device,
			Mountpoint: unescapeMount(mount),
			Fstype:     fstype,
			Opts:       opts,
		})
	}
	return out, sc.Err()
}

// unescapeMount undoes the octal escaping the kernel applies to whitespace
// in mount points (e.g. "\040" for space).
func unescapeMount(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	r := strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)
	return r.Replace(s)
}
