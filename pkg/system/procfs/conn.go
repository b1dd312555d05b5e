//go:build linux

package procfs

import (
	"bufio"
	"encoding/hex"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/drmaq/psutil/pkg/system/backend"
)

// tcpStates maps the hex state codes of /proc/net/tcp to the shared status
// strings. UDP and UNIX sockets have no TCP state machine and always report
// NONE.
var tcpStates = map[string]string{
	"01": "ESTABLISHED",
	"02": "SYN_SENT",
	"03": "SYN_RECV",
	"04": "FIN_WAIT1",
	"05": "FIN_WAIT2",
	"06": "TIME_WAIT",
	"07": "CLOSE",
	"08": "CLOSE_WAIT",
	"09": "LAST_ACK",
	"0A": "LISTEN",
	"0B": "CLOSING",
}

// sockOwner records which process holds a socket inode and through which fd.
type sockOwner struct {
	pid int32
	fd  int32
}

// Connections lists sockets from the /proc/net tables. For pid > 0 only
// sockets held by that process are returned; otherwise every socket on the
// host, attributed to its owner where the fd scan allows (reading another
// user's fd table needs privileges; unattributable sockets carry pid -1).
func (fs *FS) Connections(pid int32) ([]backend.RawConn, error) {
	owners, err := fs.socketOwners(pid)
	if err != nil {
		return nil, err
	}

	type table struct {
		file   string
		family uint32
		typ    uint32
	}
	tables := []table{
		{"tcp", syscall.AF_INET, syscall.SOCK_STREAM},
		{"tcp6", syscall.AF_INET6, syscall.SOCK_STREAM},
		{"udp", syscall.AF_INET, syscall.SOCK_DGRAM},
		{"udp6", syscall.AF_INET6, syscall.SOCK_DGRAM},
	}

	var out []backend.RawConn
	for _, tb := range tables {
		conns, err := fs.parseInetTable(fs.path("net", tb.file), tb.family, tb.typ, owners, pid)
		if err != nil {
			if os.IsNotExist(err) {
				continue // family not compiled in
			}
			return nil, err
		}
		out = append(out, conns...)
	}

	unixConns, err := fs.parseUnixTable(fs.path("net", "unix"), owners, pid)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	out = append(out, unixConns...)
	return out, nil
}

// socketOwners maps socket inode -> owning (pid, fd) by reading fd symlinks.
// For a single pid the scan is confined to that process and a failure there
// is the caller's failure; for the host-wide scan unreadable fd tables are
// skipped.
func (fs *FS) socketOwners(pid int32) (map[uint64]sockOwner, error) {
	owners := make(map[uint64]sockOwner)
	if pid > 0 {
		if err := fs.collectSocketFds(pid, owners); err != nil {
			return nil, err
		}
		return owners, nil
	}
	pids, err := fs.Pids()
	if err != nil {
		return nil, err
	}
	for _, p := range pids {
		_ = fs.collectSocketFds(p, owners)
	}
	return owners, nil
}

func (fs *FS) collectSocketFds(pid int32, owners map[uint64]sockOwner) error {
	fdDir := fs.pidPath(pid, "fd")
	entries, err := os.ReadDir(fdDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		link, err := os.Readlink(fs.pidPath(pid, "fd", e.Name()))
		if err != nil {
			continue
		}
		if !strings.HasPrefix(link, "socket:[") || !strings.HasSuffix(link, "]") {
			continue
		}
		inode, err := strconv.ParseUint(link[len("socket:["):len(link)-1], 10, 64)
		if err != nil {
			continue
		}
		fd, err := strconv.ParseInt(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		owners[inode] = sockOwner{pid: pid, fd: int32(fd)}
	}
	return nil
}

// parseInetTable reads one /proc/net/{tcp,udp}[6] table. Line format:
// "sl local_address rem_address st ... uid timeout inode ...", addresses as
// little-endian hex.
func (fs *FS) parseInetTable(path string, family, typ uint32, owners map[uint64]sockOwner, onlyPid int32) ([]backend.RawConn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []backend.RawConn
	sc := bufio.NewScanner(f)
	sc.Scan() // header
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) < 10 {
			continue
		}
		inode, err := strconv.ParseUint(flds[9], 10, 64)
		if err != nil {
			continue
		}
		owner, owned := owners[inode]
		if onlyPid > 0 && !owned {
			continue
		}

		lip, lport, err := decodeInetAddr(flds[1], family)
		if err != nil {
			continue
		}
		rip, rport, err := decodeInetAddr(flds[2], family)
		if err != nil {
			continue
		}

		status := "NONE"
		if typ == syscall.SOCK_STREAM {
			if s, ok := tcpStates[flds[3]]; ok {
				status = s
			}
		}

		conn := backend.RawConn{
			Fd:         -1,
			Family:     family,
			Type:       typ,
			LocalIP:    lip,
			LocalPort:  lport,
			RemoteIP:   rip,
			RemotePort: rport,
			Status:     status,
			Pid:        -1,
		}
		if owned {
			conn.Fd = owner.fd
			conn.Pid = owner.pid
		}
		out = append(out, conn)
	}
	return out, sc.Err()
}

// decodeInetAddr decodes the "HEXADDR:HEXPORT" encoding. The address bytes
// are in little-endian order, per 32-bit group for IPv6.
func decodeInetAddr(s string, family uint32) (string, uint32, error) {
	colon := strings.LastIndex(s, ":")
	if colon < 0 {
		return "", 0, strconv.ErrSyntax
	}
	port, err := strconv.ParseUint(s[colon+1:], 16, 32)
	if err != nil {
		return "", 0, err
	}
	raw, err := hex.DecodeString(s[:colon])
	if err != nil {
		return "", 0, err
	}

	var ip net.IP
	switch {
	case family == syscall.AF_INET && len(raw) == 4:
		ip = net.IP{raw[3], raw[2], raw[1], raw[0]}
	case family == syscall.AF_INET6 && len(raw) == 16:
		ip = make(net.IP, 16)
		for g := 0; g < 4; g++ {
			for i := 0; i < 4; i++ {
				ip[g*4+i] = raw[g*4+3-i]
			}
		}
	default:
		return "", 0, strconv.ErrSyntax
	}
	return ip.String(), uint32(port), nil
}

// parseUnixTable reads /proc/net/unix. Line format:
// "Num RefCount Protocol Flags Type St Inode [Path]".
func (fs *FS) parseUnixTable(path string, owners map[uint64]sockOwner, onlyPid int32) ([]backend.RawConn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []backend.RawConn
	sc := bufio.NewScanner(f)
	sc.Scan() // header
	for sc.Scan() {
		flds := strings.Fields(sc.Text())
		if len(flds) < 7 {
			continue
		}
		inode, err := strconv.ParseUint(flds[6], 10, 64)
		if err != nil {
			continue
		}
		owner, owned := owners[inode]
		if onlyPid > 0 && !owned {
			continue
		}
		typ, err := strconv.ParseUint(flds[4], 16, 32)
		if err != nil {
			continue
		}

		conn := backend.RawConn{
			Fd:     -1,
			Family: syscall.AF_UNIX,
			Type:   uint32(typ),
			Status: "NONE",
			Pid:    -1,
		}
		if len(flds) >= 8 {
			conn.LocalIP = flds[7]
		}
		if owned {
			conn.Fd = owner.fd
			conn.Pid = owner.pid
		}
		out = append(out, conn)
	}
	return out, sc.Err()
}
