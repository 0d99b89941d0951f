package vfs_test

import (
	"testing"

	"github.com/coopvfs/coopvfs/pkg/vfs"
	"github.com/coopvfs/coopvfs/pkg/vfstest"
)

func TestManagerConformance(t *testing.T) {
	suite := vfstest.Suite{NewManager: func() *vfs.Manager { return vfs.NewManager() }}
	suite.RunAll(t)
}
