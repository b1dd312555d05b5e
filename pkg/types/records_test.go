package types

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Records must survive a round trip through JSON, YAML and gob without loss.
// roundTrip encodes and decodes into a fresh value and compares structurally.
func roundTrip[T any](t *testing.T, in T) {
	t.Helper()

	b, err := json.Marshal(in)
	require.NoError(t, err)
	var fromJSON T
	require.NoError(t, json.Unmarshal(b, &fromJSON))
	assert.Equal(t, in, fromJSON, "json")

	y, err := yaml.Marshal(in)
	require.NoError(t, err)
	var fromYAML T
	require.NoError(t, yaml.Unmarshal(y, &fromYAML))
	assert.Equal(t, in, fromYAML, "yaml")

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(in))
	var fromGob T
	require.NoError(t, gob.NewDecoder(&buf).Decode(&fromGob))
	assert.Equal(t, in, fromGob, "gob")
}

func TestRecordSerialization(t *testing.T) {
	roundTrip(t, SwapMemory{Total: 1 << 30, Used: 1 << 20, Free: (1 << 30) - (1 << 20), UsedPercent: 0.1, Sin: 42, Sout: 7})
	roundTrip(t, DiskUsage{Total: 100, Used: 60, Free: 40, UsedPercent: 60})
	roundTrip(t, DiskIOCounters{ReadCount: 1, WriteCount: 2, ReadBytes: 3, WriteBytes: 4, ReadTime: 5, WriteTime: 6})
	roundTrip(t, DiskPartition{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Opts: "rw,relatime"})
	roundTrip(t, NetIOCounters{BytesSent: 1, BytesRecv: 2, PacketsSent: 3, PacketsRecv: 4, Errin: 5, Errout: 6, Dropin: 7, Dropout: 8})
	roundTrip(t, User{Name: "root", Terminal: "tty1", Host: "localhost", Started: 1700000000})
	roundTrip(t, Connection{Fd: 3, Family: AFInet, Type: SockStream, Laddr: Addr{IP: "127.0.0.1", Port: 8080}, Raddr: Addr{IP: "10.0.0.2", Port: 443}, Status: ConnEstablished, Pid: 123})
	roundTrip(t, InterfaceAddr{Family: AFInet, Address: "192.168.1.5", Netmask: "255.255.255.0", Broadcast: "192.168.1.255"})
	roundTrip(t, InterfaceStats{IsUp: true, Duplex: DuplexFull, Speed: 1000, MTU: 1500})
	roundTrip(t, CPUTimes{User: 1.5, System: 0.25})
	roundTrip(t, OpenFile{Path: "/var/log/syslog", Fd: 7})
	roundTrip(t, Thread{ID: 99, UserTime: 0.5, SystemTime: 0.25})
	roundTrip(t, UserIDs{Real: 1000, Effective: 1000, Saved: 1000})
	roundTrip(t, GroupIDs{Real: 100, Effective: 100, Saved: 100})
	roundTrip(t, ProcIOCounters{ReadCount: 10, WriteCount: 20, ReadBytes: 30, WriteBytes: 40})
	roundTrip(t, IOPriority{Class: 2, Value: 4})
	roundTrip(t, CtxSwitches{Voluntary: 100, Involuntary: 5})
}

func TestRecordEquality(t *testing.T) {
	a := DiskUsage{Total: 10, Used: 5, Free: 5, UsedPercent: 50}
	b := DiskUsage{Total: 10, Used: 5, Free: 5, UsedPercent: 50}
	assert.True(t, a == b, "records with identical fields must compare equal")

	b.Used = 6
	assert.False(t, a == b)
}

func TestRecordsUsableAsMapKeys(t *testing.T) {
	seen := map[Addr]int{}
	seen[Addr{IP: "127.0.0.1", Port: 80}]++
	seen[Addr{IP: "127.0.0.1", Port: 80}]++
	assert.Len(t, seen, 1)
	assert.Equal(t, 2, seen[Addr{IP: "127.0.0.1", Port: 80}])
}
