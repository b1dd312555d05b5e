package psutil

import (
	"github.com/drmaq/psutil/pkg/system/backend"
	"github.com/drmaq/psutil/pkg/types"
)

// connFilter is the resolved form of a connection-kind keyword: a raw record
// is kept iff its family and type are both members.
type connFilter struct {
	families map[types.Family]struct{}
	types    map[types.SockType]struct{}
}

func newConnFilter(fams []types.Family, typs []types.SockType) connFilter {
	f := connFilter{
		families: make(map[types.Family]struct{}, len(fams)),
		types:    make(map[types.SockType]struct{}, len(typs)),
	}
	for _, fam := range fams {
		f.families[fam] = struct{}{}
	}
	for _, typ := range typs {
		f.types[typ] = struct{}{}
	}
	return f
}

func (f connFilter) matches(c backend.RawConn) bool {
	_, famOK := f.families[types.Family(c.Family)]
	_, typOK := f.types[types.SockType(c.Type)]
	return famOK && typOK
}

// connKindTable builds the kind table for the given platform. Kinds whose
// address family does not exist on this host are left out entirely, so they
// resolve to "unknown kind" instead of an always-empty result.
func connKindTable(p Platform) map[string]connFilter {
	inet := []types.Family{types.AFInet, types.AFInet6}
	inet4 := []types.Family{types.AFInet}
	inet6 := []types.Family{types.AFInet6}
	stream := []types.SockType{types.SockStream}
	dgram := []types.SockType{types.SockDgram}
	both := []types.SockType{types.SockStream, types.SockDgram}

	tbl := map[string]connFilter{
		"all":   newConnFilter([]types.Family{types.AFInet, types.AFInet6, types.AFUnix}, both),
		"tcp":   newConnFilter(inet, stream),
		"tcp4":  newConnFilter(inet4, stream),
		"udp":   newConnFilter(inet, dgram),
		"udp4":  newConnFilter(inet4, dgram),
		"inet":  newConnFilter(inet, both),
		"inet4": newConnFilter(inet4, both),
		"inet6": newConnFilter(inet6, both),
	}
	if p.HasIPv6 {
		tbl["tcp6"] = newConnFilter(inet6, stream)
		tbl["udp6"] = newConnFilter(inet6, dgram)
	}
	if p.HasUnixSockets {
		tbl["unix"] = newConnFilter([]types.Family{types.AFUnix}, both)
	}
	return tbl
}

// resolveKind maps a caller-supplied kind keyword to its filter. Resolution
// happens before any backend call so a bad keyword fails fast.
func (s *System) resolveKind(kind string) (connFilter, error) {
	if f, ok := s.kinds[kind]; ok {
		return f, nil
	}
	valid := make([]string, 0, len(s.kinds))
	for k := range s.kinds {
		valid = append(valid, k)
	}
	return connFilter{}, &UnknownKindError{Kind: kind, Valid: valid}
}

// connRecord reshapes a raw socket into the public record. keepPid is false
// for per-process listings, where the owner is implied by the handle.
func connRecord(c backend.RawConn, keepPid bool) types.Connection {
	out := types.Connection{
		Fd:     c.Fd,
		Family: types.Family(c.Family),
		Type:   types.SockType(c.Type),
		Laddr:  types.Addr{IP: c.LocalIP, Port: c.LocalPort},
		Raddr:  types.Addr{IP: c.RemoteIP, Port: c.RemotePort},
		Status: c.Status,
	}
	if keepPid {
		out.Pid = c.Pid
	}
	return out
}

func filterConns(raw []backend.RawConn, f connFilter, keepPid bool) []types.Connection {
	out := make([]types.Connection, 0, len(raw))
	for _, c := range raw {
		if f.matches(c) {
			out = append(out, connRecord(c, keepPid))
		}
	}
	return out
}
