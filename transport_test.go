package gokeyence

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentUDP accepts datagrams and never answers
func silentUDP(t *testing.T) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn.LocalAddr().(*net.UDPAddr)
}

func TestUDPTransportReceiveCancel(t *testing.T) {
	tr, err := NewUDPTransport(nil, silentUDP(t))
	require.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, tr.Send(ctx, []byte("RD DM0\r\n")))

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = tr.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUDPTransportReceiveDeadline(t *testing.T) {
	tr, err := NewUDPTransport(nil, silentUDP(t))
	require.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, tr.Send(ctx, []byte("RD DM0\r\n")))

	_, err = tr.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// A later exchange without a deadline is not affected by the old one.
	assert.NoError(t, tr.Send(context.Background(), []byte("RD DM0\r\n")))
}

func TestTransportsExchangeWithSimulator(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	udpSim := newTestSimulator(t)
	udp, err := NewUDPTransport(nil, udpSim.Addr().(*net.UDPAddr))
	require.NoError(t, err)
	defer udp.Close()

	tcpSim := newTestSimulator(t, WithTCPTransport())
	tcp, err := NewTCPTransport(ctx, tcpSim.Addr().(*net.TCPAddr))
	require.NoError(t, err)
	defer tcp.Close()

	for _, tr := range []Transport{udp, tcp} {
		require.NoError(t, tr.Send(ctx, []byte("WRS DM0 2 00011 00022\r\n")))
		reply, err := tr.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "OK\r\n", string(reply))

		require.NoError(t, tr.Send(ctx, []byte("RDS DM0 2\r\n")))
		reply, err = tr.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "00011 00022\r\n", string(reply))
	}
}
