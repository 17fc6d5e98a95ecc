package gokeyence

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineClientFixedWidth(t *testing.T) {
	sim := newTestSimulator(t)
	inline := sim.InlineClient(nil)
	ctx := context.Background()

	ok, err := inline.Write(ctx, "DM100", []int{17, 34})
	assert.NoError(t, err)
	assert.True(t, ok)

	resp, err := inline.Read(ctx, "DM100", 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"00017", "00034"}, resp.Values)

	// Unwritten registers read as zero.
	resp, err = inline.Read(ctx, "EM5", 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"00000"}, resp.Values)

	_, err = inline.Write(ctx, "DM0", 100000)
	assert.Error(t, err)
}

func TestInlineClientPacked(t *testing.T) {
	sim := newTestSimulator(t)
	inline := sim.InlineClient(PackedCodec{ByteOrder: binary.BigEndian})
	ctx := context.Background()

	ok, err := inline.Write(ctx, "DM300", "AB")
	require.NoError(t, err)
	assert.True(t, ok)

	values, err := sim.Get("DM300", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{16706}, values)

	// Replies unpack little-endian whatever the write order.
	resp, err := inline.Read(ctx, "DM300", 1)
	require.NoError(t, err)
	assert.Equal(t, "BA", resp.Text)
}

func TestInlineClientAfterClose(t *testing.T) {
	sim := newTestSimulator(t)
	inline := sim.InlineClient(nil)
	require.NoError(t, sim.Close())

	assert.True(t, inline.IsClosed())
	_, err := inline.Read(context.Background(), "DM0", 1)
	assert.ErrorIs(t, err, ClientClosedError{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.InlineClient(nil).Write(ctx, "DM0", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatorCommandGrammar(t *testing.T) {
	sim := newTestSimulator(t)
	require.NoError(t, sim.Set("DM10", 1, 2, 3))

	tests := []struct {
		name string
		line string
		want string
	}{
		{"single read", "RD DM10\r\n", "00001\r\n"},
		{"lower case", "rd dm11\r\n", "00002\r\n"},
		{"consecutive read", "RDS DM10 3\r\n", "00001 00002 00003\r\n"},
		{"single write", "WR DM20 00042\r\n", "OK\r\n"},
		{"consecutive write", "WRS DM21 2 5 6\r\n", "OK\r\n"},
		{"unknown command", "XX DM10\r\n", "E1\r\n"},
		{"unknown command bad address", "XX 10\r\n", "E1\r\n"},
		{"missing address", "RD\r\n", "E1\r\n"},
		{"bad address", "RD 10\r\n", "E0\r\n"},
		{"zero count", "RDS DM10 0\r\n", "E0\r\n"},
		{"count too large", "RDS DM10 1001\r\n", "E0\r\n"},
		{"value too large", "WR DM10 100000\r\n", "E0\r\n"},
		{"count mismatch", "WRS DM10 3 1 2\r\n", "E0\r\n"},
		{"extra field", "RD DM10 5\r\n", "E1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sim.handle(tt.line))
		})
	}

	values, err := sim.Get("DM20", 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{42, 5, 6}, values)
}

func TestSimulatorCloseIsIdempotent(t *testing.T) {
	sim, err := NewPLCSimulator("127.0.0.1:0", WithTCPTransport())
	require.NoError(t, err)
	assert.Equal(t, "tcp", sim.Network())

	assert.NoError(t, sim.Close())
	assert.NoError(t, sim.Close())
	assert.True(t, sim.IsClosed())
}
