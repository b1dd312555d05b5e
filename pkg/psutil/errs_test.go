package psutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorRendering(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			"not_found",
			NewNotFound(321, ""),
			"NotFound process no longer exists (pid=321)",
		},
		{
			"not_found_with_name",
			NewNotFound(321, "foo"),
			"NotFound process no longer exists (pid=321, name='foo')",
		},
		{
			"not_found_explicit_msg_wins",
			&Error{Kind: NotFound, Pid: 321, Name: "foo", Msg: "foo"},
			"NotFound foo",
		},
		{
			"zombie",
			NewZombie(321, "", 0),
			"ZombieProcess process still exists but it's a zombie (pid=321)",
		},
		{
			"zombie_with_name",
			NewZombie(321, "foo", 0),
			"ZombieProcess process still exists but it's a zombie (pid=321, name='foo')",
		},
		{
			"zombie_with_name_and_ppid",
			NewZombie(321, "foo", 1),
			"ZombieProcess process still exists but it's a zombie (pid=321, name='foo', ppid=1)",
		},
		{
			"zombie_explicit_msg",
			&Error{Kind: ZombieProcess, Pid: 321, Msg: "foo"},
			"ZombieProcess foo",
		},
		{
			"access_denied",
			NewAccessDenied(321, ""),
			"AccessDenied (pid=321)",
		},
		{
			"access_denied_with_name",
			NewAccessDenied(321, "foo"),
			"AccessDenied (pid=321, name='foo')",
		},
		{
			"access_denied_explicit_msg",
			&Error{Kind: AccessDenied, Pid: 321, Msg: "foo"},
			"AccessDenied foo",
		},
		{
			"timeout_no_pid",
			NewTimeoutExpired(321, 0, ""),
			"TimeoutExpired timeout after 321 seconds",
		},
		{
			"timeout_with_pid",
			NewTimeoutExpired(321, 111, ""),
			"TimeoutExpired timeout after 321 seconds (pid=111)",
		},
		{
			"timeout_with_pid_and_name",
			NewTimeoutExpired(321, 111, "foo"),
			"TimeoutExpired timeout after 321 seconds (pid=111, name='foo')",
		},
		{
			"timeout_fractional_seconds",
			NewTimeoutExpired(0.5, 0, ""),
			"TimeoutExpired timeout after 0.5 seconds",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound(1, "")))
	assert.True(t, IsZombie(NewZombie(1, "", 0)))
	assert.True(t, IsAccessDenied(NewAccessDenied(1, "")))
	assert.True(t, IsTimeoutExpired(NewTimeoutExpired(1, 1, "")))

	assert.False(t, IsNotFound(NewZombie(1, "", 0)))
	assert.False(t, IsAccessDenied(errors.New("plain")))
	assert.False(t, IsNotFound(nil))

	// predicates see through wrapping
	wrapped := fmt.Errorf("query swap: %w", NewAccessDenied(9, ""))
	assert.True(t, IsAccessDenied(wrapped))
}

func TestUnknownKindError(t *testing.T) {
	err := &UnknownKindError{Kind: "bogus", Valid: []string{"tcp", "all", "udp"}}
	assert.Equal(t, `invalid connection kind "bogus"; valid kinds: all, tcp, udp`, err.Error())
}
