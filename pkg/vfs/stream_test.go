package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamPushPopWraps(t *testing.T) {
	s := newStream(4)

	assert.Equal(t, 4, s.push([]byte("abcd")))
	assert.True(t, s.Full())
	assert.Equal(t, 0, s.Free())

	out := make([]byte, 2)
	assert.Equal(t, 2, s.pop(out))
	assert.Equal(t, "ab", string(out))

	assert.Equal(t, 2, s.push([]byte("ef")))
	assert.Equal(t, 4, s.Size())

	out = make([]byte, 4)
	assert.Equal(t, 4, s.pop(out))
	assert.Equal(t, "cdef", string(out))
	assert.True(t, s.Empty())
}

func TestStreamPushStopsAtCapacity(t *testing.T) {
	s := newStream(3)
	n := s.push([]byte("abcdef"))
	assert.Equal(t, 3, n)
	assert.True(t, s.Full())
}

func TestStreamPeekDoesNotConsume(t *testing.T) {
	s := newStream(4)
	s.push([]byte("xy"))

	out := make([]byte, 2)
	assert.Equal(t, 2, s.peek(out))
	assert.Equal(t, "xy", string(out))
	assert.Equal(t, 2, s.Size(), "peek must not drain the buffer")

	assert.Equal(t, 2, s.pop(out))
	assert.True(t, s.Empty())
}
