package gokeyence

import (
	"bufio"
	"context"
	"net"
	"time"
)

const (
	READ_BUFFER_SIZE  = 2048
	DEFAULT_PORT      = 8501
	TCP_DIAL_TIMEOUT  = 5 * time.Second
	replyFrameEndByte = '\n'
)

// Transport moves raw command and reply packets.
// Receive blocks until exactly one reply is available. Implementations honor
// a deadline carried by ctx but impose none of their own.
type Transport interface {
	Send(ctx context.Context, packet []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// UDPTransport sends each command as one datagram and reads each reply as one datagram.
type UDPTransport struct {
	conn *net.UDPConn
	buf  []byte
}

// NewUDPTransport binds local (nil picks an ephemeral port) and connects to remote
func NewUDPTransport(local, remote *net.UDPAddr) (*UDPTransport, error) {
	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return nil, err
	}
	return &UDPTransport{
		conn: conn,
		buf:  make([]byte, READ_BUFFER_SIZE),
	}, nil
}

func (t *UDPTransport) Send(ctx context.Context, packet []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.conn.Write(packet)
	return err
}

func (t *UDPTransport) Receive(ctx context.Context) ([]byte, error) {
	release := watchContext(ctx, t.conn)
	defer release()

	n, err := t.conn.Read(t.buf)
	if err != nil {
		return nil, contextError(ctx, err)
	}
	return append([]byte(nil), t.buf[:n]...), nil
}

func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

func (t *UDPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// TCPTransport carries the same grammar over a stream; a reply ends at the
// LF of its terminator.
type TCPTransport struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewTCPTransport dials remote
func NewTCPTransport(ctx context.Context, remote *net.TCPAddr) (*TCPTransport, error) {
	dialer := net.Dialer{Timeout: TCP_DIAL_TIMEOUT}
	conn, err := dialer.DialContext(ctx, "tcp", remote.String())
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetNoDelay(true)
	}
	return &TCPTransport{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

func (t *TCPTransport) Send(ctx context.Context, packet []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.conn.Write(packet)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (t *TCPTransport) Receive(ctx context.Context) ([]byte, error) {
	release := watchContext(ctx, t.conn)
	defer release()

	line, err := t.reader.ReadBytes(replyFrameEndByte)
	if err != nil {
		return nil, contextError(ctx, err)
	}
	return line, nil
}

func (t *TCPTransport) Close() error {
	return t.conn.Close()
}

func (t *TCPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// watchContext applies ctx's deadline to the next read and unblocks the read
// as soon as ctx is cancelled. The returned func detaches the watcher.
func watchContext(ctx context.Context, conn net.Conn) func() bool {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}
	return context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
}

// contextError surfaces an expired or cancelled ctx instead of the i/o timeout
// it caused. The read deadline can fire just before ctx's own timer does.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return err
}
