//go:build linux

package procfs

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInetAddr(t *testing.T) {
	t.Run("ipv4", func(t *testing.T) {
		ip, port, err := decodeInetAddr("0100007F:1F90", syscall.AF_INET)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", ip)
		assert.Equal(t, uint32(8080), port)
	})
	t.Run("ipv4_any", func(t *testing.T) {
		ip, port, err := decodeInetAddr("00000000:0035", syscall.AF_INET)
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", ip)
		assert.Equal(t, uint32(53), port)
	})
	t.Run("ipv6_loopback", func(t *testing.T) {
		ip, port, err := decodeInetAddr("00000000000000000000000001000000:2382", syscall.AF_INET6)
		require.NoError(t, err)
		assert.Equal(t, "::1", ip)
		assert.Equal(t, uint32(9090), port)
	})
	t.Run("garbage", func(t *testing.T) {
		_, _, err := decodeInetAddr("nope", syscall.AF_INET)
		assert.Error(t, err)
		_, _, err = decodeInetAddr("0100007F:zz", syscall.AF_INET)
		assert.Error(t, err)
	})
}

const tcpFixture = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 0100007F:1F90 0200000A:01BB 01 00000000:00000000 00:00000000 00000000  1000        0 12345 1 0000000000000000 20 4 30 10 -1
   1: 00000000:0050 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 54321 1 0000000000000000 100 0 0 10 0
`

const udpFixture = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode ref pointer drops
   2: 00000000:0035 00000000:0000 07 00000000:00000000 00:00000000 00000000   101        0 22222 2 0000000000000000 0
`

const unixFixture = `Num       RefCount Protocol Flags    Type St Inode Path
ffff880000000000: 00000002 00000000 00010000 0001 01 34567 /run/app.sock
ffff880000000001: 00000002 00000000 00000000 0002 01 34568
`

func setupConnFixture(t *testing.T) *FS {
	t.Helper()
	fs, proc := newFixtureFS(t)
	writeFile(t, filepath.Join(proc, "net", "tcp"), tcpFixture)
	writeFile(t, filepath.Join(proc, "net", "udp"), udpFixture)
	writeFile(t, filepath.Join(proc, "net", "unix"), unixFixture)

	// pid 42 owns the established tcp socket and the unix socket
	fdDir := filepath.Join(proc, "42", "fd")
	require.NoError(t, os.MkdirAll(fdDir, 0o755))
	require.NoError(t, os.Symlink("socket:[12345]", filepath.Join(fdDir, "3")))
	require.NoError(t, os.Symlink("socket:[34567]", filepath.Join(fdDir, "6")))
	require.NoError(t, os.Symlink("/dev/null", filepath.Join(fdDir, "0")))

	// pid 7 owns the listener
	fdDir7 := filepath.Join(proc, "7", "fd")
	require.NoError(t, os.MkdirAll(fdDir7, 0o755))
	require.NoError(t, os.Symlink("socket:[54321]", filepath.Join(fdDir7, "5")))
	return fs
}

func TestConnections_SystemWide(t *testing.T) {
	fs := setupConnFixture(t)

	conns, err := fs.Connections(-1)
	require.NoError(t, err)
	require.Len(t, conns, 5)

	est := conns[0]
	assert.Equal(t, uint32(syscall.AF_INET), est.Family)
	assert.Equal(t, uint32(syscall.SOCK_STREAM), est.Type)
	assert.Equal(t, "127.0.0.1", est.LocalIP)
	assert.Equal(t, uint32(8080), est.LocalPort)
	assert.Equal(t, "10.0.0.2", est.RemoteIP)
	assert.Equal(t, uint32(443), est.RemotePort)
	assert.Equal(t, "ESTABLISHED", est.Status)
	assert.Equal(t, int32(42), est.Pid)
	assert.Equal(t, int32(3), est.Fd)

	listener := conns[1]
	assert.Equal(t, "LISTEN", listener.Status)
	assert.Equal(t, int32(7), listener.Pid)
	assert.Equal(t, int32(5), listener.Fd)

	udp := conns[2]
	assert.Equal(t, uint32(syscall.SOCK_DGRAM), udp.Type)
	assert.Equal(t, "NONE", udp.Status, "udp has no tcp state machine")
	assert.Equal(t, int32(-1), udp.Pid, "unowned socket carries pid -1")

	unixNamed := conns[3]
	assert.Equal(t, uint32(syscall.AF_UNIX), unixNamed.Family)
	assert.Equal(t, "/run/app.sock", unixNamed.LocalIP)
	assert.Equal(t, int32(42), unixNamed.Pid)

	unixAnon := conns[4]
	assert.Equal(t, uint32(syscall.SOCK_DGRAM), unixAnon.Type)
	assert.Empty(t, unixAnon.LocalIP)
}

func TestConnections_PerProcess(t *testing.T) {
	fs := setupConnFixture(t)

	conns, err := fs.Connections(42)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	for _, c := range conns {
		assert.Equal(t, int32(42), c.Pid)
	}
}

func TestConnections_MissingPidFdDir(t *testing.T) {
	fs := setupConnFixture(t)

	_, err := fs.Connections(9999)
	assert.True(t, os.IsNotExist(err))
}

func TestConnections_MissingTablesSkipped(t *testing.T) {
	fs, proc := newFixtureFS(t)
	writeFile(t, filepath.Join(proc, "net", "tcp"), tcpFixture)
	// no tcp6/udp/udp6/unix files at all

	conns, err := fs.Connections(-1)
	require.NoError(t, err)
	assert.Len(t, conns, 2)
}
