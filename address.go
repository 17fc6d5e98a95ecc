package gokeyence

import (
	"fmt"
	"strconv"
	"strings"
)

// Register A controller register reference such as DM100
type Register struct {
	Device string
	Number int
}

// ParseRegister splits an address like "DM100" into its device prefix and number.
// The client never parses addresses; the simulator and validation helpers do.
func ParseRegister(address string) (Register, error) {
	i := strings.IndexFunc(address, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return Register{}, fmt.Errorf("invalid register address %q", address)
	}
	n, err := strconv.Atoi(address[i:])
	if err != nil || n < 0 {
		return Register{}, fmt.Errorf("invalid register number in %q", address)
	}
	return Register{Device: strings.ToUpper(address[:i]), Number: n}, nil
}

// Offset returns the register count positions after r
func (r Register) Offset(count int) Register {
	return Register{Device: r.Device, Number: r.Number + count}
}

func (r Register) String() string {
	return fmt.Sprintf("%s%d", r.Device, r.Number)
}
