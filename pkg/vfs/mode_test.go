package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyUmaskMasksPermsNotType(t *testing.T) {
	mode := applyUmask(ModeRegular|0666, 0022)
	assert.Equal(t, ModeRegular, mode.Type())
	assert.True(t, mode.UserRead())
	assert.True(t, mode.UserWrite())
	assert.False(t, mode.GroupWrite())
	assert.False(t, mode.OtherWrite())
}

func TestApplyUmaskSetsSetgidOnDirectories(t *testing.T) {
	mode := applyUmask(ModeDir|0755, 0022)
	assert.True(t, mode.IsDir())
	assert.NotZero(t, mode&ModeSetgid)
}

func TestModeTypePredicates(t *testing.T) {
	assert.True(t, Mode(ModeSymlink | 0777).IsSymlink())
	assert.True(t, Mode(ModeFifo).IsFifo())
	assert.True(t, Mode(ModeSocket).IsSocket())
	assert.False(t, Mode(ModeSocket).IsRegular())
}
