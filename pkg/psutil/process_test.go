package psutil

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drmaq/psutil/pkg/system/backend"
	"github.com/drmaq/psutil/pkg/types"
)

func TestNewProcess_CapturesIdentity(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	sys := newTestSystem(f)

	p, err := sys.NewProcess(42)
	require.NoError(t, err)
	assert.Equal(t, int32(42), p.Pid())
	assert.Equal(t, f.boot+5.0, p.Ident().CreateTime)
}

func TestNewProcess_NotFound(t *testing.T) {
	sys := newTestSystem(newFakeBackend())

	_, err := sys.NewProcess(4242)
	require.True(t, IsNotFound(err))
	assert.Equal(t, "NotFound process no longer exists (pid=4242)", err.Error())
}

func TestProcessEqual(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	sys := newTestSystem(f)

	p1, err := sys.NewProcess(42)
	require.NoError(t, err)
	p2, err := sys.NewProcess(42)
	require.NoError(t, err)

	t.Run("same_pid_same_create_time", func(t *testing.T) {
		assert.True(t, p1.Equal(p2))
	})
	t.Run("nil_is_never_equal", func(t *testing.T) {
		assert.False(t, p1.Equal(nil))
	})
	t.Run("different_create_time", func(t *testing.T) {
		other := &Process{sys: sys, ident: Ident{Pid: 42, CreateTime: 1}}
		assert.False(t, p1.Equal(other))
	})
	t.Run("idents_collapse_as_map_keys", func(t *testing.T) {
		set := map[Ident]struct{}{
			p1.Ident(): {},
			p2.Ident(): {},
		}
		assert.Len(t, set, 1)
	})
}

func TestProcess_PidReuseDetected(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	sys := newTestSystem(f)

	p, err := sys.NewProcess(42)
	require.NoError(t, err)

	// the pid is recycled by an unrelated process between two queries
	st := f.stats[42]
	st.Name = "impostor"
	st.StartTicks = 900
	f.stats[42] = st

	_, err = p.Name()
	require.True(t, IsNotFound(err), "stale handle must not report the impostor's data")

	running, err := p.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
}

func TestProcess_Queries(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	f.status[42] = backend.RawProcStatus{
		UIDs:                   [3]int32{1000, 1000, 0},
		GIDs:                   [3]int32{100, 100, 0},
		VoluntaryCtxSwitches:   17,
		InvoluntaryCtxSwitches: 3,
	}
	f.environ[42] = []byte("HOME=/home/w\x00PATH=/usr/bin\x00\x00garbage")
	f.procIO[42] = backend.RawProcIO{Syscr: 5, Syscw: 6, ReadBytes: 700, WriteBytes: 800}
	f.files[42] = []backend.RawOpenFile{{Path: "/var/log/app.log", Fd: 3}}
	f.threads[42] = []backend.RawThread{{ID: 42, Utime: 100, Stime: 50}, {ID: 43, Utime: 10, Stime: 5}}
	f.ioprio[42] = backend.RawIOPriority{Class: 2, Value: 4}
	sys := newTestSystem(f)

	p, err := sys.NewProcess(42)
	require.NoError(t, err)

	t.Run("name", func(t *testing.T) {
		name, err := p.Name()
		require.NoError(t, err)
		assert.Equal(t, "worker", name)
	})
	t.Run("ppid", func(t *testing.T) {
		ppid, err := p.Ppid()
		require.NoError(t, err)
		assert.Equal(t, int32(1), ppid)
	})
	t.Run("status", func(t *testing.T) {
		st, err := p.Status()
		require.NoError(t, err)
		assert.Equal(t, types.StatusSleeping, st)
	})
	t.Run("cpu_times", func(t *testing.T) {
		ct, err := p.CPUTimes()
		require.NoError(t, err)
		assert.Equal(t, types.CPUTimes{User: 1.5, System: 0.5}, ct)
	})
	t.Run("environ", func(t *testing.T) {
		env, err := p.Environ()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"HOME": "/home/w", "PATH": "/usr/bin"}, env)
	})
	t.Run("io_counters", func(t *testing.T) {
		io, err := p.IOCounters()
		require.NoError(t, err)
		assert.Equal(t, types.ProcIOCounters{ReadCount: 5, WriteCount: 6, ReadBytes: 700, WriteBytes: 800}, io)
	})
	t.Run("open_files", func(t *testing.T) {
		of, err := p.OpenFiles()
		require.NoError(t, err)
		assert.Equal(t, []types.OpenFile{{Path: "/var/log/app.log", Fd: 3}}, of)
	})
	t.Run("threads", func(t *testing.T) {
		th, err := p.Threads()
		require.NoError(t, err)
		require.Len(t, th, 2)
		assert.Equal(t, types.Thread{ID: 42, UserTime: 1.0, SystemTime: 0.5}, th[0])
	})
	t.Run("uids_gids", func(t *testing.T) {
		uids, err := p.UIDs()
		require.NoError(t, err)
		assert.Equal(t, types.UserIDs{Real: 1000, Effective: 1000, Saved: 0}, uids)

		gids, err := p.GIDs()
		require.NoError(t, err)
		assert.Equal(t, types.GroupIDs{Real: 100, Effective: 100, Saved: 0}, gids)
	})
	t.Run("ctx_switches", func(t *testing.T) {
		cs, err := p.NumCtxSwitches()
		require.NoError(t, err)
		assert.Equal(t, types.CtxSwitches{Voluntary: 17, Involuntary: 3}, cs)
	})
	t.Run("io_priority", func(t *testing.T) {
		pr, err := p.IOPriority()
		require.NoError(t, err)
		assert.Equal(t, types.IOPriority{Class: 2, Value: 4}, pr)
	})
}

func TestProcessConnections(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	f.conns = testConns()
	sys := newTestSystem(f)

	p, err := sys.NewProcess(42)
	require.NoError(t, err)

	t.Run("pid_left_zero_in_per_process_listing", func(t *testing.T) {
		got, err := p.Connections("inet")
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, c := range got {
			assert.Zero(t, c.Pid)
		}
	})
	t.Run("bad_kind_fails_before_backend", func(t *testing.T) {
		before := f.connCalls
		_, err := p.Connections("nope")
		var uk *UnknownKindError
		require.ErrorAs(t, err, &uk)
		assert.Equal(t, before, f.connCalls)
	})
}

func TestProcess_ZombieClassification(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	f.zombies[42] = true
	// most per-process files read as missing for a zombie
	sys := newTestSystem(f)

	p, err := sys.NewProcess(42)
	require.NoError(t, err)

	_, err = p.Environ()
	require.True(t, IsZombie(err), "zombie must be reported as such, not NotFound: %v", err)
	assert.Equal(t, "ZombieProcess process still exists but it's a zombie (pid=42, name='worker')", err.Error())
}

func TestProcess_AccessDeniedClassification(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	f.statErr[42] = fs.ErrPermission
	sys := newTestSystem(f)

	// construction survives a privilege failure, identity stays partial
	p, err := sys.NewProcess(42)
	require.NoError(t, err)
	assert.Zero(t, p.Ident().CreateTime)

	_, err = p.CPUTimes()
	require.True(t, IsAccessDenied(err))
}

func TestProcess_Wait(t *testing.T) {
	f := newFakeBackend()
	f.addProc(42, "worker", 500)
	sys := newTestSystem(f)

	p, err := sys.NewProcess(42)
	require.NoError(t, err)

	t.Run("timeout_expires", func(t *testing.T) {
		err := p.Wait(10 * time.Millisecond)
		require.True(t, IsTimeoutExpired(err))
		assert.Equal(t, "TimeoutExpired timeout after 0.01 seconds (pid=42, name='worker')", err.Error())
	})
	t.Run("returns_when_process_exits", func(t *testing.T) {
		delete(f.stats, 42)
		assert.NoError(t, p.Wait(time.Second))
	})
}
