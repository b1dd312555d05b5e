//go:build linux

package procfs

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/drmaq/psutil/pkg/system/backend"
)

// SwapMemory reads swap sizes from /proc/meminfo (kB) and cumulative
// swap-in/out page counts from /proc/vmstat. A host without /proc/vmstat is
// ancient but legal; the page counters just stay zero.
func (fs *FS) SwapMemory() (backend.RawSwap, error) {
	raw := backend.RawSwap{PageSize: fs.PageSize()}

	f, err := os.Open(fs.path("meminfo"))
	if err != nil {
		return raw, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) < 2 {
			continue
		}
		switch flds[0] {
		case "SwapTotal:":
			raw.TotalKB, _ = strconv.ParseUint(flds[1], 10, 64)
		case "SwapFree:":
			raw.FreeKB, _ = strconv.ParseUint(flds[1], 10, 64)
		}
	}
	if err := sc.Err(); err != nil {
		return raw, err
	}

	vf, err := os.Open(fs.path("vmstat"))
	if err != nil {
		return raw, nil
	}
	defer vf.Close()

	sc = bufio.NewScanner(vf)
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) != 2 {
			continue
		}
		switch flds[0] {
		case "pswpin":
			raw.PagesIn, _ = strconv.ParseUint(flds[1], 10, 64)
		case "pswpout":
			raw.PagesOut, _ = strconv.ParseUint(flds[1], 10, 64)
		}
	}
	return raw, sc.Err()
}
