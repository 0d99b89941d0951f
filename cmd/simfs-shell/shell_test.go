package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coopvfs/coopvfs/pkg/posix"
	"github.com/coopvfs/coopvfs/pkg/vfs"
	"github.com/coopvfs/coopvfs/pkg/vfstest"
)

func TestBasicFixture(t *testing.T) {
	fixture, err := vfstest.LoadFixture("testdata/basic.yaml")
	require.NoError(t, err)

	fs := posix.New(vfs.NewManager())
	var out bytes.Buffer
	for _, cmd := range fixture.Commands {
		dispatch(&out, fs, cmd)
	}

	got := out.String()
	for _, want := range fixture.Expect {
		require.Contains(t, got, want, "output should contain %q", want)
	}
}

func TestDispatchUnknownCommandReportsItself(t *testing.T) {
	fs := posix.New(vfs.NewManager())
	var out bytes.Buffer
	dispatch(&out, fs, "frobnicate")
	require.True(t, strings.Contains(out.String(), "unknown command"))
}
