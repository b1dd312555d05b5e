package psutil

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrorKind is the closed set of process failure conditions this layer
// reports. Anything a backend signals that does not classify into one of
// these propagates unmodified.
type ErrorKind int

const (
	// NotFound: the target process no longer exists. Reported both when the
	// process table entry is gone and when an identity re-check shows the
	// pid now belongs to a different process.
	NotFound ErrorKind = iota
	// ZombieProcess: the process is still in the table but has exited and
	// not been reaped, so most per-process queries cannot be answered.
	ZombieProcess
	// AccessDenied: the query needs privileges the caller lacks.
	AccessDenied
	// TimeoutExpired: a bounded wait ran out before the process exited.
	TimeoutExpired
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case ZombieProcess:
		return "ZombieProcess"
	case AccessDenied:
		return "AccessDenied"
	case TimeoutExpired:
		return "TimeoutExpired"
	}
	return "Unknown"
}

// Error is the tagged-variant failure type for process operations. Which
// fields are meaningful depends on Kind: Ppid is only set for zombies,
// Seconds only for expired timeouts. Msg, when non-empty, replaces the
// default phrase and suppresses the structured fields in the rendering.
type Error struct {
	Kind    ErrorKind
	Pid     int32
	Name    string
	Ppid    int32
	Seconds float64
	Msg     string
}

// Error renders the stable diagnostic string. The format is part of the
// public contract: "<Kind> <default-phrase> (pid=N[, name='x'][, ppid=N])",
// or "<Kind> <msg>" when an explicit message was supplied.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())

	if e.Msg != "" {
		b.WriteByte(' ')
		b.WriteString(e.Msg)
		return b.String()
	}

	switch e.Kind {
	case NotFound:
		b.WriteString(" process no longer exists")
	case ZombieProcess:
		b.WriteString(" process still exists but it's a zombie")
	case TimeoutExpired:
		b.WriteString(" timeout after ")
		b.WriteString(strconv.FormatFloat(e.Seconds, 'f', -1, 64))
		b.WriteString(" seconds")
		if e.Pid == 0 {
			return b.String()
		}
	}

	b.WriteString(" (pid=")
	b.WriteString(strconv.FormatInt(int64(e.Pid), 10))
	if e.Name != "" {
		b.WriteString(", name='")
		b.WriteString(e.Name)
		b.WriteString("'")
	}
	if e.Ppid != 0 {
		b.WriteString(", ppid=")
		b.WriteString(strconv.FormatInt(int64(e.Ppid), 10))
	}
	b.WriteString(")")
	return b.String()
}

// NewNotFound reports that pid is gone from the process table.
func NewNotFound(pid int32, name string) *Error {
	return &Error{Kind: NotFound, Pid: pid, Name: name}
}

// NewZombie reports that pid is an unreaped zombie.
func NewZombie(pid int32, name string, ppid int32) *Error {
	return &Error{Kind: ZombieProcess, Pid: pid, Name: name, Ppid: ppid}
}

// NewAccessDenied reports a privilege failure against pid.
func NewAccessDenied(pid int32, name string) *Error {
	return &Error{Kind: AccessDenied, Pid: pid, Name: name}
}

// NewTimeoutExpired reports that a bounded wait of the given duration in
// seconds elapsed without the process exiting.
func NewTimeoutExpired(seconds float64, pid int32, name string) *Error {
	return &Error{Kind: TimeoutExpired, Seconds: seconds, Pid: pid, Name: name}
}

// kindIs reports whether err is a taxonomy error of the given kind.
func kindIs(err error, kind ErrorKind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// IsNotFound reports whether err is a NotFound taxonomy error.
func IsNotFound(err error) bool { return kindIs(err, NotFound) }

// IsZombie reports whether err is a ZombieProcess taxonomy error.
func IsZombie(err error) bool { return kindIs(err, ZombieProcess) }

// IsAccessDenied reports whether err is an AccessDenied taxonomy error.
func IsAccessDenied(err error) bool { return kindIs(err, AccessDenied) }

// IsTimeoutExpired reports whether err is a TimeoutExpired taxonomy error.
func IsTimeoutExpired(err error) bool { return kindIs(err, TimeoutExpired) }

// UnknownKindError reports a connection-kind keyword missing from the
// resolver table, either because it is misspelled or because the address
// family behind it does not exist on this platform.
type UnknownKindError struct {
	Kind  string
	Valid []string
}

func (e *UnknownKindError) Error() string {
	valid := append([]string(nil), e.Valid...)
	sort.Strings(valid)
	return fmt.Sprintf("invalid connection kind %q; valid kinds: %s",
		e.Kind, strings.Join(valid, ", "))
}
