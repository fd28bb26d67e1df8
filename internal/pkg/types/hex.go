package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Hex is a JSON-RPC quantity encoded as a "0x"-prefixed hexadecimal string,
// such as a block height ("0x1a").
type Hex string

// HexFromUint64 encodes n as a lowercase quantity without leading zeros.
func HexFromUint64(n uint64) Hex {
	return Hex("0x" + strconv.FormatUint(n, 16))
}

func validateHex(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("hex string must start with 0x")
	}

	if _, err := strconv.ParseUint(s[2:], 16, 64); err != nil {
		return fmt.Errorf("invalid hexadecimal value: %w", err)
	}

	return nil
}

// MarshalJSON encodes the Hex as a JSON string.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(h))
}

// UnmarshalJSON parses and validates a JSON-encoded quantity.
func (h *Hex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}

	if err := validateHex(s); err != nil {
		return err
	}

	*h = Hex(s)
	return nil
}

// Uint64 returns the decoded value, or zero when h is not a valid quantity.
func (h Hex) Uint64() uint64 {
	if len(h) < 3 {
		return 0
	}

	v, _ := strconv.ParseUint(string(h)[2:], 16, 64)
	return v
}
