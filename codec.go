package gokeyence

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// Upper link protocol constants
	DEFAULT_TERMINATOR = "\r\n" // CR LF ends every command and reply
	MAX_REGISTER_VALUE = 99999  // Largest value a fixed-width field can carry
	MAX_PACKED_VALUE   = 65535  // Largest value two packed characters can carry
	REGISTER_WIDTH     = 5      // Fixed-width decimal field size

	// Packed-character scheme constants
	PACKED_CHUNK_SIZE = 2
	PACKED_PAD_CHAR   = "0"

	statusOK = "OK"
)

// Command is an encoded request to the controller.
// Only ReadCommand and WriteCommand implement it.
type Command interface {
	Encode() []byte
	isCommand()
}

// ReadCommand reads count registers starting at Address
type ReadCommand struct {
	Address    string
	Count      int
	Terminator string
}

// WriteCommand writes one or more register values starting at Address.
// Width is the zero-padding applied to each value; zero means no padding.
type WriteCommand struct {
	Address    string
	Values     []uint32
	Width      int
	Terminator string
}

func (ReadCommand) isCommand()  {}
func (WriteCommand) isCommand() {}

// NewReadCommand creates a read command. Count must be at least 1.
func NewReadCommand(address string, count int) (ReadCommand, error) {
	if count < 1 {
		return ReadCommand{}, InvalidPayloadError{Value: count, Reason: "read count must be at least 1"}
	}
	return ReadCommand{Address: address, Count: count, Terminator: DEFAULT_TERMINATOR}, nil
}

// Encode renders the command as "RD <addr>" or "RDS <addr> <count>"
func (c ReadCommand) Encode() []byte {
	if c.Count > 1 {
		return []byte(fmt.Sprintf("RDS %s %d%s", c.Address, c.Count, terminatorOrDefault(c.Terminator)))
	}
	return []byte(fmt.Sprintf("RD %s%s", c.Address, terminatorOrDefault(c.Terminator)))
}

// NewWriteCommand creates a fixed-width write command.
// data may be any integer type or a slice of integers; every value must lie
// in [0, 99999].
func NewWriteCommand(address string, data interface{}) (WriteCommand, error) {
	raw, err := integerValues(data)
	if err != nil {
		return WriteCommand{}, err
	}
	if len(raw) == 0 {
		return WriteCommand{}, InvalidPayloadError{Value: data, Reason: "no values to write"}
	}

	values := make([]uint32, len(raw))
	for i, v := range raw {
		if v < 0 {
			return WriteCommand{}, InvalidPayloadError{Value: v, Reason: "value must not be negative"}
		}
		if v > MAX_REGISTER_VALUE {
			return WriteCommand{}, InvalidPayloadError{Value: v, Reason: fmt.Sprintf("value must not exceed %d", MAX_REGISTER_VALUE)}
		}
		values[i] = uint32(v)
	}

	return WriteCommand{
		Address:    address,
		Values:     values,
		Width:      REGISTER_WIDTH,
		Terminator: DEFAULT_TERMINATOR,
	}, nil
}

// NewPackedWriteCommand creates a write command in the packed-character
// scheme: every two ASCII characters of text become one 16-bit register value
// according to order.
//
// Odd-length text is padded with a trailing '0'. This padding has not been
// verified against real hardware.
func NewPackedWriteCommand(address string, text string, order binary.ByteOrder) (WriteCommand, error) {
	if text == "" {
		return WriteCommand{}, InvalidPayloadError{Value: text, Reason: "no characters to write"}
	}
	if len(text)%PACKED_CHUNK_SIZE == 1 {
		text += PACKED_PAD_CHAR
	}

	values := make([]uint32, 0, len(text)/PACKED_CHUNK_SIZE)
	for i := 0; i < len(text); i += PACKED_CHUNK_SIZE {
		v, err := CharsToInt(text[i:i+PACKED_CHUNK_SIZE], order)
		if err != nil {
			return WriteCommand{}, err
		}
		values = append(values, uint32(v))
	}

	return WriteCommand{
		Address:    address,
		Values:     values,
		Terminator: DEFAULT_TERMINATOR,
	}, nil
}

// Encode renders the command as "WR <addr> <v>" or "WRS <addr> <n> <v1> ... <vn>"
func (c WriteCommand) Encode() []byte {
	term := terminatorOrDefault(c.Terminator)
	if len(c.Values) == 1 {
		return []byte(fmt.Sprintf("WR %s %s%s", c.Address, c.formatValue(c.Values[0]), term))
	}

	fields := make([]string, len(c.Values))
	for i, v := range c.Values {
		fields[i] = c.formatValue(v)
	}
	return []byte(fmt.Sprintf("WRS %s %d %s%s", c.Address, len(c.Values), strings.Join(fields, " "), term))
}

func (c WriteCommand) formatValue(v uint32) string {
	if c.Width > 0 {
		return fmt.Sprintf("%0*d", c.Width, v)
	}
	return strconv.FormatUint(uint64(v), 10)
}

// Response is a decoded controller reply.
// Status is set for acknowledgements; Values holds register tokens of a read
// reply and Text their packed-character rendering when the packed scheme is used.
type Response struct {
	Status string
	Values []string
	Text   string
}

// OK reports whether the reply is a success acknowledgement
func (r Response) OK() bool {
	return strings.HasPrefix(r.Status, statusOK)
}

// Equal reports whether two responses carry the same content
func (r Response) Equal(o Response) bool {
	return r.Status == o.Status && r.Text == o.Text && slices.Equal(r.Values, o.Values)
}

// Ints parses the register tokens as decimal integers
func (r Response) Ints() ([]int, error) {
	out := make([]int, len(r.Values))
	for i, v := range r.Values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, MalformedResponseError{Token: v}
		}
		out[i] = n
	}
	return out, nil
}

func (r Response) String() string {
	switch {
	case r.Status != "":
		return r.Status
	case r.Text != "":
		return r.Text
	default:
		return strings.Join(r.Values, " ")
	}
}

// Codec turns register operations into wire commands and decodes replies
type Codec interface {
	EncodeRead(address string, count int) (Command, error)
	EncodeWrite(address string, data interface{}) (Command, error)
	Decode(raw []byte) (Response, error)
}

// FixedWidthCodec implements the scheme where every register travels as a
// 5-digit zero-padded decimal field.
type FixedWidthCodec struct {
	// Terminator defaults to CR LF
	Terminator string
}

// EncodeRead implements Codec
func (c FixedWidthCodec) EncodeRead(address string, count int) (Command, error) {
	cmd, err := NewReadCommand(address, count)
	if err != nil {
		return nil, err
	}
	cmd.Terminator = terminatorOrDefault(c.Terminator)
	return cmd, nil
}

// EncodeWrite implements Codec
func (c FixedWidthCodec) EncodeWrite(address string, data interface{}) (Command, error) {
	cmd, err := NewWriteCommand(address, data)
	if err != nil {
		return nil, err
	}
	cmd.Terminator = terminatorOrDefault(c.Terminator)
	return cmd, nil
}

// Decode implements Codec.
// An "OK" reply yields its status token; anything else must be a list of
// space-separated 5-character tokens.
func (c FixedWidthCodec) Decode(raw []byte) (Response, error) {
	if len(raw) == 0 {
		return Response{}, EmptyResponseError{}
	}
	term := terminatorOrDefault(c.Terminator)
	s := string(raw)

	if strings.HasPrefix(s, statusOK) {
		return Response{Status: strings.TrimSuffix(s, term)}, nil
	}
	if code, ok := controllerErrorCode(s, term); ok {
		return Response{}, ControllerError{Code: code}
	}

	tokens := strings.Split(s, " ")
	values := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSuffix(tok, term)
		if len(tok) != REGISTER_WIDTH {
			return Response{}, MalformedResponseError{Token: tok}
		}
		values = append(values, tok)
	}
	return Response{Values: values}, nil
}

// PackedCodec implements the scheme where every register holds two ASCII
// characters. ByteOrder applies to writes; replies are always unpacked
// little-endian.
type PackedCodec struct {
	// Terminator defaults to CR LF
	Terminator string
	// ByteOrder defaults to binary.LittleEndian
	ByteOrder binary.ByteOrder
}

// EncodeRead implements Codec
func (c PackedCodec) EncodeRead(address string, count int) (Command, error) {
	cmd, err := NewReadCommand(address, count)
	if err != nil {
		return nil, err
	}
	cmd.Terminator = terminatorOrDefault(c.Terminator)
	return cmd, nil
}

// EncodeWrite implements Codec. data must be a string or a byte slice.
func (c PackedCodec) EncodeWrite(address string, data interface{}) (Command, error) {
	var text string
	switch d := data.(type) {
	case string:
		text = d
	case []byte:
		text = string(d)
	default:
		return nil, InvalidPayloadError{Value: data, Reason: "packed payload must be a string"}
	}

	cmd, err := NewPackedWriteCommand(address, text, c.ByteOrder)
	if err != nil {
		return nil, err
	}
	cmd.Terminator = terminatorOrDefault(c.Terminator)
	return cmd, nil
}

// Decode implements Codec.
// An "OK" reply is returned verbatim; otherwise every token is parsed as a
// decimal register value and unpacked into two characters. A value whose
// bytes are not both ASCII is an OutOfRangeError.
func (c PackedCodec) Decode(raw []byte) (Response, error) {
	if len(raw) == 0 {
		return Response{}, EmptyResponseError{}
	}
	term := terminatorOrDefault(c.Terminator)
	s := string(raw)

	if strings.HasPrefix(s, statusOK) {
		return Response{Status: s}, nil
	}
	if code, ok := controllerErrorCode(s, term); ok {
		return Response{}, ControllerError{Code: code}
	}

	tokens := strings.Split(s, " ")
	values := make([]string, 0, len(tokens))
	var text strings.Builder
	for _, tok := range tokens {
		tok = strings.TrimSuffix(tok, term)
		v, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return Response{}, MalformedResponseError{Token: tok}
		}
		chunk, err := IntToChars(v, binary.LittleEndian)
		if err != nil {
			return Response{}, err
		}
		if !isASCII(chunk) {
			return Response{}, OutOfRangeError{Value: v}
		}
		values = append(values, tok)
		text.WriteString(chunk)
	}
	return Response{Values: values, Text: text.String()}, nil
}

// CharsToInt packs a 2-character ASCII chunk into a 16-bit register value.
// With binary.LittleEndian the first character is the low byte.
func CharsToInt(chunk string, order binary.ByteOrder) (uint16, error) {
	if len(chunk) != PACKED_CHUNK_SIZE {
		return 0, InvalidPayloadError{Value: chunk, Reason: "chunk must be exactly 2 characters"}
	}
	if !isASCII(chunk) {
		return 0, InvalidPayloadError{Value: chunk, Reason: "chunk must be ASCII"}
	}
	if order == nil {
		order = binary.LittleEndian
	}
	return order.Uint16([]byte(chunk)), nil
}

// IntToChars unpacks a register value into its 2-character chunk.
// It is the inverse of CharsToInt for the same order.
func IntToChars(value uint64, order binary.ByteOrder) (string, error) {
	if value > MAX_PACKED_VALUE {
		return "", OutOfRangeError{Value: value}
	}
	if order == nil {
		order = binary.LittleEndian
	}
	b := make([]byte, PACKED_CHUNK_SIZE)
	order.PutUint16(b, uint16(value))
	return string(b), nil
}

// ParseByteOrder maps "little" and "big" to their encoding/binary order
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "little", "":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("byte order must be \"little\" or \"big\", got %q", s)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}

func terminatorOrDefault(t string) string {
	if t == "" {
		return DEFAULT_TERMINATOR
	}
	return t
}

// controllerErrorCode recognizes error replies such as "E1\r\n"
func controllerErrorCode(s, term string) (string, bool) {
	s = strings.TrimSuffix(s, term)
	if len(s) != 2 || s[0] != 'E' || s[1] < '0' || s[1] > '9' {
		return "", false
	}
	return s, true
}

func integerValues(data interface{}) ([]int64, error) {
	switch d := data.(type) {
	case int:
		return []int64{int64(d)}, nil
	case int8:
		return []int64{int64(d)}, nil
	case int16:
		return []int64{int64(d)}, nil
	case int32:
		return []int64{int64(d)}, nil
	case int64:
		return []int64{d}, nil
	case uint:
		return unsignedValues(uint64(d))
	case uint8:
		return []int64{int64(d)}, nil
	case uint16:
		return []int64{int64(d)}, nil
	case uint32:
		return []int64{int64(d)}, nil
	case uint64:
		return unsignedValues(d)
	case []int:
		return convertInts(d), nil
	case []int8:
		return convertInts(d), nil
	case []int16:
		return convertInts(d), nil
	case []int32:
		return convertInts(d), nil
	case []int64:
		return convertInts(d), nil
	case []uint8:
		return convertInts(d), nil
	case []uint16:
		return convertInts(d), nil
	case []uint32:
		return convertInts(d), nil
	case []uint64:
		return unsignedValues(d...)
	case []uint:
		vs := make([]uint64, len(d))
		for i, v := range d {
			vs[i] = uint64(v)
		}
		return unsignedValues(vs...)
	default:
		return nil, InvalidPayloadError{Value: data, Reason: "value must be an integer"}
	}
}

func convertInts[T int | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32](values []T) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

// unsignedValues rejects oversized values here so they never wrap negative
func unsignedValues(values ...uint64) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		if v > MAX_REGISTER_VALUE {
			return nil, InvalidPayloadError{Value: v, Reason: fmt.Sprintf("value must not exceed %d", MAX_REGISTER_VALUE)}
		}
		out[i] = int64(v)
	}
	return out, nil
}
