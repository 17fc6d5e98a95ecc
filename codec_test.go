package gokeyence

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCommandEncode(t *testing.T) {
	cmd, err := NewReadCommand("DM100", 1)
	require.NoError(t, err)
	assert.Equal(t, "RD DM100\r\n", string(cmd.Encode()))

	cmd, err = NewReadCommand("DM100", 5)
	require.NoError(t, err)
	assert.Equal(t, "RDS DM100 5\r\n", string(cmd.Encode()))

	_, err = NewReadCommand("DM100", 0)
	var invalid InvalidPayloadError
	assert.True(t, errors.As(err, &invalid))
}

func TestWriteCommandFixedWidth(t *testing.T) {
	cmd, err := NewWriteCommand("DM100", 42)
	require.NoError(t, err)
	assert.Equal(t, "WR DM100 00042\r\n", string(cmd.Encode()))

	cmd, err = NewWriteCommand("DM100", []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "WRS DM100 3 00001 00002 00003\r\n", string(cmd.Encode()))

	cmd, err = NewWriteCommand("DM0", []uint16{7, 8})
	require.NoError(t, err)
	assert.Equal(t, []uint32{7, 8}, cmd.Values)

	cmd, err = NewWriteCommand("DM0", MAX_REGISTER_VALUE)
	require.NoError(t, err)
	assert.Equal(t, "WR DM0 99999\r\n", string(cmd.Encode()))

	for _, data := range []interface{}{
		[]int8{1, 2},
		[]int16{1, 2},
		[]uint8{1, 2},
		[]uint64{1, 2},
	} {
		cmd, err = NewWriteCommand("DM0", data)
		require.NoError(t, err, "%T", data)
		assert.Equal(t, "WRS DM0 2 00001 00002\r\n", string(cmd.Encode()), "%T", data)
	}
}

func TestWriteCommandRejectsBadPayload(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
	}{
		{"too large", 100000},
		{"negative", -1},
		{"negative in slice", []int{1, -5}},
		{"unsigned too large", uint64(100000)},
		{"unsigned slice too large", []uint{1, 123456}},
		{"uint64 slice too large", []uint64{1, 100000}},
		{"negative int16 in slice", []int16{3, -1}},
		{"not an integer", "12"},
		{"float", 1.5},
		{"empty slice", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWriteCommand("DM0", tt.data)
			var invalid InvalidPayloadError
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}
}

func TestOversizedUnsignedReportsRealValue(t *testing.T) {
	_, err := NewWriteCommand("DM0", uint64(1<<40))
	var invalid InvalidPayloadError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, uint64(1<<40), invalid.Value)
}

func TestFixedWidthDecode(t *testing.T) {
	c := FixedWidthCodec{}

	resp, err := c.Decode([]byte("00042 00001\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"00042", "00001"}, resp.Values)
	ints, err := resp.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{42, 1}, ints)

	resp, err = c.Decode([]byte("OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
	assert.True(t, resp.OK())

	_, err = c.Decode(nil)
	assert.ErrorIs(t, err, EmptyResponseError{})

	for _, raw := range []string{"1234", "123456", "00001 123\r\n"} {
		_, err = c.Decode([]byte(raw))
		var malformed MalformedResponseError
		assert.True(t, errors.As(err, &malformed), "decode %q: %v", raw, err)
	}

	_, err = c.Decode([]byte("E1\r\n"))
	assert.Equal(t, ControllerError{Code: "E1"}, err)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	c := FixedWidthCodec{}
	for _, v := range []int{0, 7, 42, 1234, 99999} {
		cmd, err := c.EncodeWrite("DM0", v)
		require.NoError(t, err)
		// The value field is exactly what a read reply would carry.
		field := string(cmd.Encode())[len("WR DM0 "):]
		resp, err := c.Decode([]byte(field))
		require.NoError(t, err)
		ints, err := resp.Ints()
		require.NoError(t, err)
		assert.Equal(t, []int{v}, ints)
	}
}

func TestCharsToInt(t *testing.T) {
	v, err := CharsToInt("AB", binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(16961), v)

	v, err = CharsToInt("AB", binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(16706), v)

	v, err = CharsToInt("V1", binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(12630), v)

	v, err = CharsToInt("V1", binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint16(22065), v)

	_, err = CharsToInt("ABC", binary.LittleEndian)
	assert.Error(t, err)
	_, err = CharsToInt("é", binary.LittleEndian)
	assert.Error(t, err)
}

func TestPackedCharsRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		for a := byte(0x20); a < 0x7f; a++ {
			for b := byte(0x20); b < 0x7f; b++ {
				chunk := string([]byte{a, b})
				v, err := CharsToInt(chunk, order)
				require.NoError(t, err)
				back, err := IntToChars(uint64(v), order)
				require.NoError(t, err)
				if back != chunk {
					t.Fatalf("%v: %q -> %d -> %q", order, chunk, v, back)
				}
			}
		}
	}
}

func TestIntToCharsOutOfRange(t *testing.T) {
	_, err := IntToChars(65536, binary.LittleEndian)
	assert.Equal(t, OutOfRangeError{Value: 65536}, err)
}

func TestPackedWriteCommand(t *testing.T) {
	cmd, err := NewPackedWriteCommand("DM100", "ABC", binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, "WRS DM100 2 16961 12355\r\n", string(cmd.Encode()))

	// Odd length is padded with '0'.
	cmd, err = NewPackedWriteCommand("DM100", "a", binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, "WR DM100 12385\r\n", string(cmd.Encode()))

	cmd, err = NewPackedWriteCommand("DM100", "AB", binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, "WR DM100 16706\r\n", string(cmd.Encode()))

	_, err = NewPackedWriteCommand("DM100", "", binary.LittleEndian)
	var invalid InvalidPayloadError
	assert.True(t, errors.As(err, &invalid))
}

func TestPackedCodec(t *testing.T) {
	c := PackedCodec{ByteOrder: binary.LittleEndian}

	_, err := c.EncodeWrite("DM0", 42)
	var invalid InvalidPayloadError
	assert.True(t, errors.As(err, &invalid))

	cmd, err := c.EncodeWrite("DM0", []byte("V1"))
	require.NoError(t, err)
	assert.Equal(t, "WR DM0 12630\r\n", string(cmd.Encode()))

	resp, err := c.Decode([]byte("16961 12355\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "ABC0", resp.Text)
	assert.Equal(t, []string{"16961", "12355"}, resp.Values)

	// Acknowledgements pass through untouched.
	resp, err = c.Decode([]byte("OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "OK\r\n", resp.Status)
	assert.True(t, resp.OK())

	_, err = c.Decode([]byte("70000\r\n"))
	assert.Equal(t, OutOfRangeError{Value: 70000}, err)

	// 0x8041 unpacks to 'A' followed by a non-ASCII byte.
	_, err = c.Decode([]byte("32833\r\n"))
	assert.Equal(t, OutOfRangeError{Value: 32833}, err)

	_, err = c.Decode([]byte("12x45\r\n"))
	var malformed MalformedResponseError
	assert.True(t, errors.As(err, &malformed))

	_, err = c.Decode(nil)
	assert.ErrorIs(t, err, EmptyResponseError{})
}

func TestPackedTextRoundTrip(t *testing.T) {
	c := PackedCodec{}
	for _, text := range []string{"AB", "hello!", "KV-8000 "} {
		cmd, err := c.EncodeWrite("DM0", text)
		require.NoError(t, err)

		wc := cmd.(WriteCommand)
		reply := ""
		for i, v := range wc.Values {
			if i > 0 {
				reply += " "
			}
			reply += wc.formatValue(v)
		}
		resp, err := c.Decode([]byte(reply + "\r\n"))
		require.NoError(t, err)
		assert.Equal(t, text, resp.Text)
	}
}

func TestParseByteOrder(t *testing.T) {
	order, err := ParseByteOrder("big")
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, order)

	order, err = ParseByteOrder("")
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian, order)

	_, err = ParseByteOrder("middle")
	assert.Error(t, err)
}

func TestResponseEqual(t *testing.T) {
	a := Response{Values: []string{"00001", "00002"}}
	b := Response{Values: []string{"00001", "00002"}}
	c := Response{Values: []string{"00001", "00003"}}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "00001 00002", a.String())
}

func TestParseRegister(t *testing.T) {
	reg, err := ParseRegister("dm100")
	require.NoError(t, err)
	assert.Equal(t, Register{Device: "DM", Number: 100}, reg)
	assert.Equal(t, "DM103", reg.Offset(3).String())

	for _, bad := range []string{"", "100", "DM", "DM1x"} {
		_, err := ParseRegister(bad)
		assert.Error(t, err, bad)
	}
}
