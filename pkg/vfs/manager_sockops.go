package vfs

// SocketType selects which Socket DataItem Manager.Socket creates,
// mirroring the SOCK_STREAM/SOCK_SEQPACKET/SOCK_DGRAM constants.
type SocketType int

const (
	SockStream SocketType = iota
	SockSeqPacket
	SockDgram
)

func (m *Manager) newSocketInode(kind SocketType) *Inode {
	var data DataItem
	switch kind {
	case SockStream:
		data = NewSocketStream()
	case SockSeqPacket:
		data = NewSeqPacketSocket()
	default:
		data = NewSocketDatagram()
	}
	return newInode(ModeSocket|0600, data)
}

func (m *Manager) Socket(kind SocketType) (int, error) {
	node := m.newSocketInode(kind)
	d := &Descriptor{inode: node, flags: ORdWr}
	return m.fds.allocate(d)
}

// SocketPair implements socketpair(2): two already-connected endpoints,
// bypassing Bind/Listen/Connect/Accept entirely.
func (m *Manager) SocketPair(kind SocketType) (fd0, fd1 int, err error) {
	a := m.newSocketInode(kind)
	b := m.newSocketInode(kind)
	switch kind {
	case SockStream:
		sa, sb := a.Data.(*SocketStream), b.Data.(*SocketStream)
		completeAccept(&sa.ReliableSocket, &sb.ReliableSocket)
	case SockSeqPacket:
		sa, sb := a.Data.(*SeqPacketSocket), b.Data.(*SeqPacketSocket)
		completeAccept(&sa.ReliableSocket, &sb.ReliableSocket)
	default:
		return -1, -1, EOPNOTSUPP
	}
	fd0, err = m.fds.allocate(&Descriptor{inode: a, flags: ORdWr})
	if err != nil {
		return -1, -1, err
	}
	fd1, err = m.fds.allocate(&Descriptor{inode: b, flags: ORdWr})
	if err != nil {
		m.fds.free(fd0)
		return -1, -1, err
	}
	return fd0, fd1, nil
}

// reliableOf returns the shared state machine out of whichever of
// SocketStream/SeqPacketSocket a descriptor's Inode holds, since Bind,
// Listen, Connect and Accept are identical across the two.
func reliableOf(data DataItem) (*ReliableSocket, bool) {
	switch s := data.(type) {
	case *SocketStream:
		return &s.ReliableSocket, true
	case *SeqPacketSocket:
		return &s.ReliableSocket, true
	}
	return nil, false
}

func (m *Manager) Bind(fd int, path string) error {
	d, err := m.fds.get(fd)
	if err != nil {
		return err
	}
	parent, leaf, err := m.resolveParent(CurrentDirectory, path)
	if err != nil {
		return err
	}
	dir, ok := parent.AsDirectory()
	if !ok {
		return ENOTDIR
	}
	if _, exists := dir.lookup(leaf); exists {
		return EADDRINUSE
	}
	addr := boundAddress(path)
	switch data := d.inode.Data.(type) {
	case *SocketDatagram:
		err = data.Bind(addr)
	default:
		r, ok := reliableOf(d.inode.Data)
		if !ok {
			return ENOTSOCK
		}
		err = r.Bind(addr)
	}
	if err != nil {
		return err
	}
	d.inode.parent = parent
	dir.insert(leaf, d.inode)
	return nil
}

func (m *Manager) Listen(fd int, backlog int) error {
	d, err := m.fds.get(fd)
	if err != nil {
		return err
	}
	r, ok := reliableOf(d.inode.Data)
	if !ok {
		return ENOTSOCK
	}
	return r.Listen(backlog)
}

// ResolveAddress looks up whichever bound socket Inode claims path,
// the lookup Connect and Sendto both need: it walks the tree from root
// (where Bind links every bound socket) for a socket whose address is
// path.
func (m *Manager) ResolveAddress(path string) (*Inode, error) {
	var found *Inode
	var walk func(n *Inode)
	walk = func(n *Inode) {
		if found != nil {
			return
		}
		dir, ok := n.AsDirectory()
		if ok {
			for _, name := range dir.order {
				walk(dir.entries[name])
			}
			return
		}
		if r, ok := reliableOf(n.Data); ok && r.address.Bound() && r.address.Path() == path {
			found = n
			return
		}
		if dg, ok := n.Data.(*SocketDatagram); ok && dg.address.Bound() && dg.address.Path() == path {
			found = n
		}
	}
	walk(m.root)
	if found == nil {
		return nil, ECONNREFUSED
	}
	return found, nil
}

func (m *Manager) Connect(fd int, path string) error {
	d, err := m.fds.get(fd)
	if err != nil {
		return err
	}
	if dg, ok := d.inode.Data.(*SocketDatagram); ok {
		target, err := m.ResolveAddress(path)
		if err != nil {
			return err
		}
		if _, ok := target.Data.(*SocketDatagram); !ok {
			return EPROTOTYPE
		}
		dg.connectDefault(boundAddress(path))
		return nil
	}

	self, ok := reliableOf(d.inode.Data)
	if !ok {
		return ENOTSOCK
	}
	target, err := m.ResolveAddress(path)
	if err != nil {
		return err
	}
	listener, ok := reliableOf(target.Data)
	if !ok {
		return ECONNREFUSED
	}
	if err := self.requestConnect(listener); err != nil {
		return err
	}
	for self.state == socketConnecting {
		m.sched.Suspend("socket-connect")
	}
	if self.state != socketConnected {
		return ECONNREFUSED
	}
	return nil
}

// Accept blocks until the passive socket's backlog has a pending
// connection, then picks one via Chooser (the nondeterministic-choice
// hook) rather than always the oldest, so a
// host driven by a model checker can explore every acceptance order.
func (m *Manager) Accept(fd int) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return -1, err
	}
	listener, ok := reliableOf(d.inode.Data)
	if !ok {
		return -1, ENOTSOCK
	}
	if listener.state != socketPassive {
		return -1, EINVAL
	}
	for len(listener.backlog) == 0 {
		m.sched.Suspend("socket-accept")
	}
	idx := m.choose.Choose(len(listener.backlog))
	pending := listener.backlog[idx]
	listener.backlog = append(listener.backlog[:idx], listener.backlog[idx+1:]...)

	var accepted *Inode
	switch d.inode.Data.(type) {
	case *SocketStream:
		accepted = newInode(ModeSocket|0600, NewSocketStream())
		acceptedR, _ := reliableOf(accepted.Data)
		completeAccept(pending.peer, acceptedR)
	case *SeqPacketSocket:
		accepted = newInode(ModeSocket|0600, NewSeqPacketSocket())
		acceptedR, _ := reliableOf(accepted.Data)
		completeAccept(pending.peer, acceptedR)
	}
	return m.fds.allocate(&Descriptor{inode: accepted, flags: ORdWr})
}

func (m *Manager) Sendto(fd int, buf []byte, path string, flags MsgFlags) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, err
	}
	dg, ok := d.inode.Data.(*SocketDatagram)
	if !ok {
		return 0, ENOTSOCK
	}
	dest := path
	if dest == "" {
		if !dg.hasDefaultPeer {
			return 0, EDESTADDRREQ
		}
		dest = dg.defaultPeer.Path()
	}
	target, err := m.ResolveAddress(dest)
	if err != nil {
		return 0, err
	}
	if !target.Mode.UserWrite() {
		return 0, EACCES
	}
	peer, ok := target.Data.(*SocketDatagram)
	if !ok {
		return 0, ENOTSOCK
	}
	from := dg.address
	peer.enqueue(from, buf)
	return len(buf), nil
}

func (m *Manager) Recvfrom(fd int, buf []byte, flags MsgFlags) (int, Address, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, Address{}, err
	}
	dg, ok := d.inode.Data.(*SocketDatagram)
	if !ok {
		return 0, Address{}, ENOTSOCK
	}
	return dg.recvfrom(m.sched, buf, flags)
}

// Send and Recv are send(2)/recv(2) over a connected stream or
// seqpacket socket: Sendto/Recvfrom's datagram-only counterparts,
// threading MsgFlags through instead of forwarding straight to the
// generic Read/Write that ignore them.
func (m *Manager) Send(fd int, buf []byte, flags MsgFlags) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, err
	}
	if !d.flags.Writable() {
		return 0, EBADF
	}
	switch data := d.inode.Data.(type) {
	case *SocketStream:
		return data.Write(m.sched, buf, flags)
	case *SeqPacketSocket:
		return data.Write(m.sched, buf, flags)
	default:
		return 0, ENOTSOCK
	}
}

func (m *Manager) Recv(fd int, buf []byte, flags MsgFlags) (int, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return 0, err
	}
	if !d.flags.Readable() {
		return 0, EBADF
	}
	switch data := d.inode.Data.(type) {
	case *SocketStream:
		return data.Read(m.sched, buf, flags)
	case *SeqPacketSocket:
		return data.Read(m.sched, buf, flags)
	default:
		return 0, ENOTSOCK
	}
}

// LocalAddress reports the address a socket descriptor is bound to, if
// any; Getsockname in package posix is the only caller.
func (m *Manager) LocalAddress(fd int) (string, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return "", err
	}
	if dg, ok := d.inode.Data.(*SocketDatagram); ok {
		return dg.address.Path(), nil
	}
	r, ok := reliableOf(d.inode.Data)
	if !ok {
		return "", ENOTSOCK
	}
	return r.address.Path(), nil
}

// PeerAddress reports a connected stream/seqpacket socket's peer
// address; datagram sockets have no fixed peer to report here even
// with a default destination set by Connect, matching getpeername(2)'s
// ENOTCONN for unconnected SOCK_DGRAM.
func (m *Manager) PeerAddress(fd int) (string, error) {
	d, err := m.fds.get(fd)
	if err != nil {
		return "", err
	}
	if _, ok := d.inode.Data.(*SocketDatagram); ok {
		return "", ENOTCONN
	}
	r, ok := reliableOf(d.inode.Data)
	if !ok {
		return "", ENOTSOCK
	}
	if r.state != socketConnected || r.peer == nil {
		return "", ENOTCONN
	}
	return r.peer.address.Path(), nil
}
