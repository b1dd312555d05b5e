// Package envblock decodes a raw C environ block, the NUL-delimited
// KEY=VALUE region a backend reads out of a target process, into a map.
//
// The block usually comes straight from another process's memory, so it may
// carry trailing garbage after the terminating double NUL, entries that are
// not assignments at all, and a truncated final entry when the read was cut
// short. None of that is an error: the parser keeps every complete
// assignment it finds and silently drops the rest.
package envblock

import (
	"bytes"
	"strings"
)

// Parse scans data entry by entry and returns the assignments as a map.
//
//   - A NUL at the very start or immediately after another NUL ends the
//     usable region; anything beyond it is ignored.
//   - An entry without '=' contributes nothing.
//   - An entry starting with '=' has an empty key and is skipped too.
//   - A final entry missing its NUL is dropped, never failed on.
//
// upperKeys normalizes keys to upper case, for platforms whose environment
// is case-insensitive and canonically upper-cased. Values are never
// case-normalized.
func Parse(data []byte, upperKeys bool) map[string]string {
	ret := make(map[string]string)
	pos := 0
	for {
		next := bytes.IndexByte(data[pos:], 0)
		if next < 0 {
			break // truncated tail, drop it
		}
		next += pos
		if next <= pos {
			break // NUL at start or double NUL: end of block
		}
		if eq := bytes.IndexByte(data[pos:next], '='); eq > 0 {
			key := string(data[pos : pos+eq])
			if upperKeys {
				key = strings.ToUpper(key)
			}
			ret[key] = string(data[pos+eq+1 : next])
		}
		pos = next + 1
	}
	return ret
}
