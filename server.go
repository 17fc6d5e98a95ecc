package gokeyence

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

const (
	SERVER_BUFFER_SIZE   = 1024 // UDP receive buffer size
	ERROR_CHANNEL_BUFFER = 1    // Buffer size for error channels
	MAX_READ_COUNT       = 1000 // Largest RDS count the simulator accepts

	replyOK           = "OK\r\n"
	replyDeviceError  = "E0\r\n"
	replyCommandError = "E1\r\n"
)

type transportKind int

const (
	transportUDP transportKind = iota
	transportTCP
)

type serverConfig struct {
	transport transportKind
}

// ServerOption configures the PLC simulator.
type ServerOption func(*serverConfig)

// WithTCPTransport switches the simulator to TCP instead of UDP.
func WithTCPTransport() ServerOption {
	return func(cfg *serverConfig) {
		cfg.transport = transportTCP
	}
}

// Server Keyence upper link server (PLC emulator).
// It answers RD, RDS, WR and WRS with a register memory that starts zeroed.
type Server struct {
	conn       *net.UDPConn
	ln         *net.TCPListener
	transport  transportKind
	memory     map[Register]uint32
	memMu      sync.RWMutex
	closed     bool
	closeMutex sync.RWMutex
	errChan    chan error
	done       chan struct{}
}

// NewPLCSimulator creates a new PLC simulator listening on address ("host:port")
func NewPLCSimulator(address string, opts ...ServerOption) (*Server, error) {
	cfg := serverConfig{transport: transportUDP}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := new(Server)
	s.transport = cfg.transport
	s.memory = make(map[Register]uint32)
	s.errChan = make(chan error, ERROR_CHANNEL_BUFFER)
	s.done = make(chan struct{})

	switch cfg.transport {
	case transportUDP:
		udpAddr, err := net.ResolveUDPAddr("udp", address)
		if err != nil {
			return nil, err
		}
		conn, err := net.ListenUDP("udp", udpAddr)
		if err != nil {
			return nil, err
		}
		s.conn = conn
		go s.udpLoop()
	case transportTCP:
		tcpAddr, err := net.ResolveTCPAddr("tcp", address)
		if err != nil {
			return nil, err
		}
		ln, err := net.ListenTCP("tcp", tcpAddr)
		if err != nil {
			return nil, err
		}
		s.ln = ln
		go s.tcpAcceptLoop()
	default:
		return nil, fmt.Errorf("unsupported simulator transport")
	}

	return s, nil
}

// Addr returns the address the simulator listens on
func (s *Server) Addr() net.Addr {
	if s.transport == transportTCP {
		return s.ln.Addr()
	}
	return s.conn.LocalAddr()
}

// Network returns "udp" or "tcp"
func (s *Server) Network() string {
	if s.transport == transportTCP {
		return "tcp"
	}
	return "udp"
}

// IsClosed returns true if the server has been closed
func (s *Server) IsClosed() bool {
	s.closeMutex.RLock()
	defer s.closeMutex.RUnlock()
	return s.closed
}

// Err returns the error channel for server errors
// Errors from the server loop are sent to this channel
func (s *Server) Err() <-chan error {
	return s.errChan
}

// Close closes the server
func (s *Server) Close() error {
	s.closeMutex.Lock()
	if s.closed {
		s.closeMutex.Unlock()
		return nil
	}
	s.closed = true
	s.closeMutex.Unlock()

	close(s.done)
	switch s.transport {
	case transportUDP:
		if s.conn != nil {
			return s.conn.Close()
		}
	case transportTCP:
		if s.ln != nil {
			return s.ln.Close()
		}
	}
	return nil
}

// Set stores values into consecutive registers starting at address
func (s *Server) Set(address string, values ...uint32) error {
	reg, err := ParseRegister(address)
	if err != nil {
		return err
	}
	s.memMu.Lock()
	for i, v := range values {
		s.memory[reg.Offset(i)] = v
	}
	s.memMu.Unlock()
	return nil
}

// Get returns count consecutive register values starting at address
func (s *Server) Get(address string, count int) ([]uint32, error) {
	reg, err := ParseRegister(address)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	s.memMu.RLock()
	for i := range out {
		out[i] = s.memory[reg.Offset(i)]
	}
	s.memMu.RUnlock()
	return out, nil
}

func (s *Server) udpLoop() {
	defer close(s.errChan)

	buf := make([]byte, SERVER_BUFFER_SIZE)
	for {
		rlen, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if s.IsClosed() {
				return
			}
			s.errChan <- fmt.Errorf("server read error: %w", err)
			return
		}

		if rlen > 0 {
			reply := s.handle(string(buf[:rlen]))
			if _, err := s.conn.WriteToUDP([]byte(reply), remote); err != nil {
				if s.IsClosed() {
					return
				}
				s.errChan <- fmt.Errorf("server write error: %w", err)
				return
			}
		}
	}
}

func (s *Server) tcpAcceptLoop() {
	defer close(s.errChan)

	for {
		conn, err := s.ln.AcceptTCP()
		if err != nil {
			if s.IsClosed() {
				return
			}
			s.errChan <- fmt.Errorf("accept error: %w", err)
			return
		}
		go s.handleTCPConn(conn)
	}
}

func (s *Server) handleTCPConn(conn *net.TCPConn) {
	defer conn.Close()
	go func() {
		<-s.done
		conn.Close()
	}()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString(replyFrameEndByte)
		if err != nil {
			return
		}
		if _, err := conn.Write([]byte(s.handle(line))); err != nil {
			return
		}
	}
}

// handle answers one command line
func (s *Server) handle(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return replyCommandError
	}
	cmd := strings.ToUpper(fields[0])
	switch cmd {
	case "RD", "RDS", "WR", "WRS":
	default:
		return replyCommandError
	}

	reg, err := ParseRegister(fields[1])
	if err != nil {
		return replyDeviceError
	}

	switch cmd {
	case "RD":
		if len(fields) != 2 {
			return replyCommandError
		}
		return s.readReply(reg, 1)

	case "RDS":
		if len(fields) != 3 {
			return replyCommandError
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil || count < 1 || count > MAX_READ_COUNT {
			return replyDeviceError
		}
		return s.readReply(reg, count)

	case "WR":
		if len(fields) != 3 {
			return replyCommandError
		}
		return s.writeReply(reg, fields[2:])

	case "WRS":
		if len(fields) < 4 {
			return replyCommandError
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil || count != len(fields)-3 {
			return replyDeviceError
		}
		return s.writeReply(reg, fields[3:])

	default:
		return replyCommandError
	}
}

func (s *Server) readReply(reg Register, count int) string {
	tokens := make([]string, count)
	s.memMu.RLock()
	for i := range tokens {
		tokens[i] = fmt.Sprintf("%0*d", REGISTER_WIDTH, s.memory[reg.Offset(i)])
	}
	s.memMu.RUnlock()
	return strings.Join(tokens, " ") + DEFAULT_TERMINATOR
}

func (s *Server) writeReply(reg Register, fields []string) string {
	values := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil || v > MAX_REGISTER_VALUE {
			return replyDeviceError
		}
		values[i] = uint32(v)
	}

	s.memMu.Lock()
	for i, v := range values {
		s.memory[reg.Offset(i)] = v
	}
	s.memMu.Unlock()
	return replyOK
}
