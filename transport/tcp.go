package transport

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// Listener accepts TCP connections on a non-blocking listening socket,
// per spec.md §4.4 ("the acquisition task never blocks on accept").
type Listener struct {
	fd   int
	port int
}

// NewListener creates, binds, and listens on address:port, putting the
// listening socket into non-blocking mode before returning. address
// may be empty, meaning "all interfaces" (INADDR_ANY).
func NewListener(address string, port int, backlog int) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, werrors.Wrap(werrors.ServerGetaddrinfo, err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, werrors.Wrap(werrors.ServerSocketBind, err)
	}

	sa, err := sockaddrFor(address, port)
	if err != nil {
		_ = unix.Close(fd)
		return nil, werrors.Wrap(werrors.ServerInvalidAddress, err)
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, werrors.Wrap(werrors.ServerSocketBind, err)
	}

	if backlog <= 0 {
		backlog = 128
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, werrors.Wrap(werrors.ServerSocketListen, err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, werrors.Wrap(werrors.ServerSetNonblocking, err)
	}

	boundPort := port
	if name, err := unix.Getsockname(fd); err == nil {
		if in4, ok := name.(*unix.SockaddrInet4); ok {
			boundPort = in4.Port
		}
	}

	return &Listener{fd: fd, port: boundPort}, nil
}

// Port returns the bound local port, resolved via getsockname so a
// listener created with port 0 can report the port the kernel chose.
func (l *Listener) Port() int { return l.port }

func sockaddrFor(address string, port int) (unix.Sockaddr, error) {
	sa := &unix.SockaddrInet4{Port: port}
	if address == "" {
		return sa, nil
	}
	ip := net.ParseIP(address)
	if ip == nil {
		return nil, fmt.Errorf("not an IP address: %q", address)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("only IPv4 listen addresses are supported: %q", address)
	}
	copy(sa.Addr[:], ip4)
	return sa, nil
}

// Accept returns the next pending connection, if any. ok is false and
// err is nil when no connection is currently pending (the non-blocking
// equivalent of EAGAIN) — callers must treat that as "try again next
// tick", never as an error.
func (l *Listener) Accept() (conn *TCPConn, ok bool, err error) {
	nfd, _, acceptErr := unix.Accept(l.fd)
	if acceptErr != nil {
		if acceptErr == unix.EAGAIN || acceptErr == unix.EWOULDBLOCK {
			return nil, false, nil
		}
		if acceptErr == unix.EINTR {
			return nil, false, nil
		}
		return nil, false, acceptErr
	}

	if err := unix.SetNonblock(nfd, true); err != nil {
		_ = unix.Close(nfd)
		return nil, false, err
	}
	_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

	remote := "unknown"
	if sa, saErr := unix.Getpeername(nfd); saErr == nil {
		if in4, ok := sa.(*unix.SockaddrInet4); ok {
			remote = fmt.Sprintf("%d.%d.%d.%d:%d", in4.Addr[0], in4.Addr[1], in4.Addr[2], in4.Addr[3], in4.Port)
		}
	}

	return &TCPConn{fd: nfd, remote: remote}, true, nil
}

// Close releases the listening socket.
func (l *Listener) Close() error {
	return unix.Close(l.fd)
}

// TCPConn is a non-blocking TCP connection handle, implementing Conn.
type TCPConn struct {
	fd     int
	remote string
}

func (c *TCPConn) RemoteAddr() string { return c.remote }

func (c *TCPConn) Read(buf []byte) ReadResult {
	for retries := 0; retries < maxInterruptedRetries; retries++ {
		n, err := unix.Read(c.fd, buf)
		if err == nil {
			if n == 0 {
				return ReadResult{Closed: true}
			}
			return ReadResult{N: n}
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return ReadResult{WouldBlock: true}
		}
		if err == unix.EINTR {
			continue
		}
		return ReadResult{Err: err, ErrKind: classify(err)}
	}
	return ReadResult{Err: unix.EINTR, ErrKind: ErrInterrupted}
}

func (c *TCPConn) Write(buf []byte) WriteResult {
	for retries := 0; retries < maxInterruptedRetries; retries++ {
		n, err := unix.Write(c.fd, buf)
		if err == nil {
			return WriteResult{N: n}
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return WriteResult{WouldBlock: true}
		}
		if err == unix.EINTR {
			continue
		}
		return WriteResult{Err: err, ErrKind: classify(err)}
	}
	return WriteResult{Err: unix.EINTR, ErrKind: ErrInterrupted}
}

func (c *TCPConn) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

func classify(err error) ErrKind {
	switch err {
	case unix.EPIPE:
		return ErrEPIPE
	case unix.ECONNRESET:
		return ErrECONNRESET
	case unix.EFAULT:
		return ErrEFAULT
	case unix.EINTR:
		return ErrInterrupted
	default:
		return ErrOther
	}
}
