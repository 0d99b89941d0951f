package vfs

import "golang.org/x/sys/unix"

func statSetNlink(st *unix.Stat_t, nlink uint64) {
	st.Nlink = uint32(nlink)
}

func statSetBlksize(st *unix.Stat_t, blksize int64) {
	st.Blksize = int32(blksize)
}
