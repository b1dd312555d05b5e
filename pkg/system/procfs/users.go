//go:build linux

package procfs

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/drmaq/psutil/pkg/system/backend"
)

// utmpRecord is the on-disk glibc utmp layout, 384 bytes per record.
type utmpRecord struct {
	Type    int16
	_       [2]byte
	Pid     int32
	Line    [32]byte
	ID      [4]byte
	User    [32]byte
	Host    [256]byte
	Exit    [4]byte
	Session int32
	TvSec   int32
	TvUsec  int32
	AddrV6  [16]byte
	Unused  [20]byte
}

const utmpUserProcess = 7

// Users reads the utmp login database and keeps only USER_PROCESS records,
// the ones representing an interactive session.
func (fs *FS) Users() ([]backend.RawUser, error) {
	f, err := os.Open(fs.utmp)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []backend.RawUser
	for {
		var rec utmpRecord
		err := binary.Read(f, binary.LittleEndian, &rec)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec.Type != utmpUserProcess {
			continue
		}
		out = append(out, backend.RawUser{
			User: cstring(rec.User[:]),
			Line: cstring(rec.Line[:]),
			Host: cstring(rec.Host[:]),
			Tv:   float64(rec.TvSec) + float64(rec.TvUsec)/1e6,
		})
	}
	return out, nil
}

// cstring truncates a fixed-size C char array at its first NUL.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
