package types

import (
	"strconv"
	"syscall"
)

// Family is a raw socket address-family code as reported by the platform
// backend. The numeric values are OS-specific; the constants below take the
// value the running platform uses, so records can be compared against them
// directly.
type Family uint32

const (
	AFInet  = Family(syscall.AF_INET)
	AFInet6 = Family(syscall.AF_INET6)
	AFUnix  = Family(syscall.AF_UNIX)
)

// String returns the symbolic name when the code is one the runtime knows,
// otherwise the decimal code itself. Unknown codes are passed through rather
// than rejected so records from newer kernels still render.
func (f Family) String() string {
	switch f {
	case AFInet:
		return "AF_INET"
	case AFInet6:
		return "AF_INET6"
	case AFUnix:
		return "AF_UNIX"
	}
	return strconv.FormatUint(uint64(f), 10)
}

// SockType is a raw socket type code (transport mode) from the backend.
type SockType uint32

const (
	SockStream    = SockType(syscall.SOCK_STREAM)
	SockDgram     = SockType(syscall.SOCK_DGRAM)
	SockRaw       = SockType(syscall.SOCK_RAW)
	SockSeqpacket = SockType(syscall.SOCK_SEQPACKET)
)

// String returns the symbolic name for known type codes, the decimal code
// otherwise.
func (t SockType) String() string {
	switch t {
	case SockStream:
		return "SOCK_STREAM"
	case SockDgram:
		return "SOCK_DGRAM"
	case SockRaw:
		return "SOCK_RAW"
	case SockSeqpacket:
		return "SOCK_SEQPACKET"
	}
	return strconv.FormatUint(uint64(t), 10)
}

// Duplex is the duplex mode of a network interface.
type Duplex int

const (
	DuplexUnknown Duplex = 0
	DuplexHalf    Duplex = 1
	DuplexFull    Duplex = 2
)

func (d Duplex) String() string {
	switch d {
	case DuplexFull:
		return "full"
	case DuplexHalf:
		return "half"
	default:
		return "unknown"
	}
}

// Connection status values, shared by all backends. Backends translate their
// native state encoding into one of these before handing records over.
const (
	ConnEstablished = "ESTABLISHED"
	ConnSynSent     = "SYN_SENT"
	ConnSynRecv     = "SYN_RECV"
	ConnFinWait1    = "FIN_WAIT1"
	ConnFinWait2    = "FIN_WAIT2"
	ConnTimeWait    = "TIME_WAIT"
	ConnClose       = "CLOSE"
	ConnCloseWait   = "CLOSE_WAIT"
	ConnLastAck     = "LAST_ACK"
	ConnListen      = "LISTEN"
	ConnClosing     = "CLOSING"
	ConnNone        = "NONE"
)

// Process status values.
const (
	StatusRunning     = "running"
	StatusSleeping    = "sleeping"
	StatusDiskSleep   = "disk-sleep"
	StatusStopped     = "stopped"
	StatusTracingStop = "tracing-stop"
	StatusZombie      = "zombie"
	StatusDead        = "dead"
	StatusWaking      = "waking"
	StatusIdle        = "idle"
	StatusParked      = "parked"
)
