package debugger

import (
	"fmt"
	"strings"
)

// parseAddress parses a 0x-prefixed hex or plain decimal address
// literal.
func parseAddress(s string) (uint32, error) {
	var addr uint32
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		if _, err := fmt.Sscanf(lower, "0x%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address %q", s)
		}
		return addr, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return addr, nil
}
