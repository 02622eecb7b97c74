package netcalc

import (
	"fmt"
	"strings"
)

const macOctets = 6

// GenerateMAC returns a random MAC address as six lowercase hex octets
// joined by colons. Every octet is drawn independently from [0, 255]; the
// multicast and locally administered bits are left as drawn.
func GenerateMAC(src Source) string {
	octets := make([]string, macOctets)
	for i := range octets {
		octets[i] = fmt.Sprintf("%02x", src.Int64N(256))
	}
	return strings.Join(octets, ":")
}
