package vfs

import "unsafe"

// MsgFlags mirrors the send(2)/recv(2) flag bits a socket operation
// can carry: MsgDontWait forces a single non-blocking attempt instead
// of suspending, MsgWaitAll keeps a stream receive going until buf
// fills or the peer closes, and MsgPeek leaves received bytes in the
// inbox for the next call to see again.
type MsgFlags int

const (
	MsgDontWait MsgFlags = 1 << iota
	MsgWaitAll
	MsgPeek
)

func (f MsgFlags) has(bit MsgFlags) bool { return f&bit != 0 }

// socketState is the ReliableSocket state machine: a socket starts
// fresh, Bind only changes its address,
// Listen turns it passive, Connect turns it connecting until an Accept
// on the far end completes the pairing and both sides become
// connected, and Close moves it to closed from any state.
type socketState int

const (
	socketFresh socketState = iota
	socketPassive
	socketConnecting
	socketConnected
	socketClosed
)

// pendingConn is one entry in a passive socket's backlog: a connecting
// peer waiting to be popped by Accept.
type pendingConn struct {
	peer *ReliableSocket
}

// ReliableSocket is the state machine shared by SocketStream and
// SeqPacketSocket; the two differ only in how bytes written by one
// side are framed for the other, which is why both embed
// this type rather than duplicating the state transitions.
type ReliableSocket struct {
	state   socketState
	address Address

	backlogCap int
	backlog    []*pendingConn

	peer *ReliableSocket

	// peerGone latches once the connected peer closes, so the next
	// Read/Write can react (ECONNRESET / further reads draining
	// whatever the peer already queued) instead of dereferencing a
	// socket that has already torn down its own state.
	peerGone bool
}

func (s *ReliableSocket) Bind(addr Address) error {
	if s.state != socketFresh {
		return EINVAL
	}
	s.address = addr
	return nil
}

func (s *ReliableSocket) Listen(backlog int) error {
	if s.state != socketFresh {
		return EINVAL
	}
	if !s.address.Bound() {
		return EDESTADDRREQ
	}
	if backlog <= 0 {
		backlog = 1
	}
	s.state = socketPassive
	s.backlogCap = backlog
	return nil
}

// requestConnect enqueues this socket as a pending connection against a
// passive listener; the caller (Manager.Connect) then suspends until
// Accept completes the pairing or the listener is gone.
func (s *ReliableSocket) requestConnect(listener *ReliableSocket) error {
	if s.state != socketFresh {
		return EISCONN
	}
	if listener.state != socketPassive {
		return ECONNREFUSED
	}
	if len(listener.backlog) >= listener.backlogCap {
		return ECONNREFUSED
	}
	s.state = socketConnecting
	listener.backlog = append(listener.backlog, &pendingConn{peer: s})
	return nil
}

// completeAccept pairs a backlog entry's connecting socket with a fresh
// accepted socket, moving both to connected.
func completeAccept(connecting, accepted *ReliableSocket) {
	connecting.state = socketConnected
	accepted.state = socketConnected
	connecting.peer = accepted
	accepted.peer = connecting
}

func (s *ReliableSocket) close() {
	s.state = socketClosed
	if s.peer != nil && !s.peer.peerGone {
		s.peer.peerGone = true
	}
	for _, pending := range s.backlog {
		pending.peer.state = socketClosed
	}
	s.backlog = nil
}

// SocketStream is a SOCK_STREAM endpoint: an unframed byte pipe once
// connected, data written by one side read as an undifferentiated
// stream by the other, the same shape Pipe uses internally.
type SocketStream struct {
	ReliableSocket
	inbox *Stream
}

func NewSocketStream() *SocketStream {
	return &SocketStream{inbox: newStream(socketStreamCap)}
}

func (s *SocketStream) Kind() Mode { return ModeSocket }

func (s *SocketStream) Write(sched Scheduler, buf []byte, flags MsgFlags) (int, error) {
	if s.state != socketConnected {
		return 0, ENOTCONN
	}
	if s.peerGone {
		return 0, EPIPE
	}
	dst := (*SocketStream)(unsafe.Pointer(s.peer))
	for dst.inbox.Full() {
		if s.peerGone {
			return 0, EPIPE
		}
		if flags.has(MsgDontWait) {
			return 0, EAGAIN
		}
		sched.Suspend("socket-write")
	}
	return dst.inbox.push(buf), nil
}

func (s *SocketStream) Read(sched Scheduler, buf []byte, flags MsgFlags) (int, error) {
	if s.state != socketConnected && s.state != socketClosed {
		return 0, ENOTCONN
	}
	want := len(buf)
	if !flags.has(MsgWaitAll) {
		want = 1
	}
	for s.inbox.Size() < want {
		if s.peerGone {
			break
		}
		if flags.has(MsgDontWait) {
			return 0, EAGAIN
		}
		sched.Suspend("socket-read")
	}
	if flags.has(MsgPeek) {
		return s.inbox.peek(buf), nil
	}
	return s.inbox.pop(buf), nil
}

// SeqPacketSocket is a SOCK_SEQPACKET endpoint: like SocketStream but
// message boundaries survive the trip, so each Write/Read moves exactly
// one datagram-shaped record rather than a byte run.
type SeqPacketSocket struct {
	ReliableSocket
	inbox [][]byte
}

func NewSeqPacketSocket() *SeqPacketSocket {
	return &SeqPacketSocket{}
}

func (s *SeqPacketSocket) Kind() Mode { return ModeSocket }

func (s *SeqPacketSocket) Write(sched Scheduler, buf []byte, flags MsgFlags) (int, error) {
	if s.state != socketConnected {
		return 0, ENOTCONN
	}
	if s.peerGone {
		return 0, EPIPE
	}
	dst := (*SeqPacketSocket)(unsafe.Pointer(s.peer))
	msg := append([]byte(nil), buf...)
	dst.inbox = append(dst.inbox, msg)
	return len(buf), nil
}

func (s *SeqPacketSocket) Read(sched Scheduler, buf []byte, flags MsgFlags) (int, error) {
	if s.state != socketConnected && s.state != socketClosed {
		return 0, ENOTCONN
	}
	for len(s.inbox) == 0 {
		if s.peerGone {
			return 0, nil
		}
		if flags.has(MsgDontWait) {
			return 0, EAGAIN
		}
		sched.Suspend("socket-read")
	}
	msg := s.inbox[0]
	if flags.has(MsgPeek) {
		return copy(buf, msg), nil
	}
	s.inbox = s.inbox[1:]
	return copy(buf, msg), nil
}

// datagram is one queued SocketDatagram message together with the
// sender's address, so Recvfrom can report where it came from.
type datagram struct {
	from Address
	data []byte
}

// SocketDatagram is a connectionless SOCK_DGRAM endpoint. It has no
// ReliableSocket state machine: Bind just claims an address, and
// Sendto/Recvfrom look peers up by address through the owning Manager
// rather than through a fixed peer pointer, since a datagram socket's
// correspondent can change on every call.
type SocketDatagram struct {
	address Address
	inbox   []datagram

	// defaultPeer is the address Connect recorded for a connectionless
	// socket (connect() on SOCK_DGRAM is allowed purely to fix a default
	// destination; recvfrom does not filter by it); it is just a name, never
	// a pointer, so a default peer going away needs no weak-reference
	// bookkeeping at all.
	defaultPeer    Address
	hasDefaultPeer bool
}

func NewSocketDatagram() *SocketDatagram {
	return &SocketDatagram{}
}

func (s *SocketDatagram) Kind() Mode { return ModeSocket }

func (s *SocketDatagram) Bind(addr Address) error {
	if s.address.Bound() {
		return EINVAL
	}
	s.address = addr
	return nil
}

func (s *SocketDatagram) connectDefault(addr Address) {
	s.defaultPeer = addr
	s.hasDefaultPeer = true
}

func (s *SocketDatagram) enqueue(from Address, data []byte) {
	s.inbox = append(s.inbox, datagram{from: from, data: append([]byte(nil), data...)})
}

func (s *SocketDatagram) recvfrom(sched Scheduler, buf []byte, flags MsgFlags) (int, Address, error) {
	for len(s.inbox) == 0 {
		if flags.has(MsgDontWait) {
			return 0, Address{}, EAGAIN
		}
		sched.Suspend("socket-recv")
	}
	msg := s.inbox[0]
	if flags.has(MsgPeek) {
		return copy(buf, msg.data), msg.from, nil
	}
	s.inbox = s.inbox[1:]
	return copy(buf, msg.data), msg.from, nil
}
