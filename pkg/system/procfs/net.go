//go:build linux

package procfs

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/drmaq/psutil/pkg/system/backend"
)

// NetIOCounters parses /proc/net/dev. Each data line is
// "iface: rx-bytes rx-packets rx-errs rx-drop ... tx-bytes tx-packets
// tx-errs tx-drop ...".
func (fs *FS) NetIOCounters() (map[string]backend.RawNetIO, error) {
	f, err := os.Open(fs.path("net", "dev"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]backend.RawNetIO)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue // header lines
		}
		iface := strings.TrimSpace(line[:colon])
		flds := strings.Fields(line[colon+1:])
		if len(flds) < 12 {
			continue
		}
		u := func(i int) uint64 {
			v, _ := strconv.ParseUint(flds[i], 10, 64)
			return v
		}
		out[iface] = backend.RawNetIO{
			BytesRecv:   u(0),
			PacketsRecv: u(1),
			Errin:       u(2),
			Dropin:      u(3),
			BytesSent:   u(8),
			PacketsSent: u(9),
			Errout:      u(10),
			Dropout:     u(11),
		}
	}
	return out, sc.Err()
}

// NetIfaceAddrs enumerates interface addresses through the netlink-backed
// stdlib API; procfs has no per-address file worth parsing.
func (fs *FS) NetIfaceAddrs() ([]backend.RawIfaceAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []backend.RawIfaceAddr
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			raw := backend.RawIfaceAddr{Iface: iface.Name, Addr: ipnet.IP.String()}
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				raw.Family = syscall.AF_INET
				raw.Netmask = net.IP(ipnet.Mask).String()
				if iface.Flags&net.FlagBroadcast != 0 {
					raw.Broadcast = broadcastAddr(ip4, ipnet.Mask)
				}
			} else {
				raw.Family = syscall.AF_INET6
				raw.Netmask = net.IP(ipnet.Mask).String()
			}
			out = append(out, raw)
		}
	}
	return out, nil
}

func broadcastAddr(ip net.IP, mask net.IPMask) string {
	if len(mask) != len(ip) {
		return ""
	}
	bcast := make(net.IP, len(ip))
	for i := range ip {
		bcast[i] = ip[i] | ^mask[i]
	}
	return bcast.String()
}

// NetIfaceStats combines stdlib interface flags/MTU with the speed and
// duplex files under /sys/class/net. Interfaces without a negotiated link
// report -1 in those files; that maps to zero/unknown.
func (fs *FS) NetIfaceStats() (map[string]backend.RawIfaceStats, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make(map[string]backend.RawIfaceStats, len(ifaces))
	for _, iface := range ifaces {
		st := backend.RawIfaceStats{
			IsUp: iface.Flags&net.FlagUp != 0,
			MTU:  iface.MTU,
		}
		if v, err := fs.readSysNetInt(iface.Name, "speed"); err == nil && v > 0 {
			st.Speed = uint64(v)
		}
		switch fs.readSysNetString(iface.Name, "duplex") {
		case "full":
			st.Duplex = 2
		case "half":
			st.Duplex = 1
		}
		out[iface.Name] = st
	}
	return out, nil
}

func (fs *FS) readSysNetString(iface, file string) string {
	b, err := os.ReadFile(filepath.Join(fs.sysNet, iface, file))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (fs *FS) readSysNetInt(iface, file string) (int64, error) {
	s := fs.readSysNetString(iface, file)
	return strconv.ParseInt(s, 10, 64)
}
