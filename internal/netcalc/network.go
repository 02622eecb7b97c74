package netcalc

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"

	"github.com/martinsuchenak/devcalc/internal/model"
)

// Sample is a host address drawn from a network together with the
// network's gateway
type Sample struct {
	Network netip.Prefix
	IP      netip.Addr
	Gateway netip.Addr
}

// ToModel converts the sample to its wire form
func (s Sample) ToModel() model.NetworkSample {
	return model.NetworkSample{
		Network: s.Network.String(),
		IP:      s.IP.String(),
		Gateway: s.Gateway.String(),
	}
}

// ParseNetwork parses an IPv4 network leniently: host bits are masked off
// instead of rejected, and a bare address is read as a /32.
func ParseNetwork(network string) (netip.Prefix, error) {
	text := network
	if !strings.Contains(text, "/") {
		text += "/32"
	}

	prefix, err := netip.ParsePrefix(text)
	if err != nil {
		return netip.Prefix{}, invalidNetwork(network, fmt.Errorf("%w: %v", ErrInvalidCIDR, err))
	}
	if !prefix.Addr().Is4() {
		return netip.Prefix{}, invalidNetwork(network, ErrNotIPv4)
	}

	return prefix.Masked(), nil
}

// SampleNetwork draws one usable host address uniformly at random from
// network. The gateway is always the first usable address of the
// normalized network and may coincide with the drawn address.
func SampleNetwork(src Source, network string) (Sample, error) {
	prefix, err := ParseNetwork(network)
	if err != nil {
		return Sample{}, err
	}

	usable := usableHosts(prefix)
	if usable == 0 {
		return Sample{}, &Error{Kind: KindNetworkTooSmall, Network: network, Err: ErrNetworkTooSmall}
	}

	base := addrToUint32(prefix.Addr())
	offset := 1 + src.Int64N(int64(usable))

	return Sample{
		Network: prefix,
		IP:      uint32ToAddr(base + uint32(offset)),
		Gateway: uint32ToAddr(base + 1),
	}, nil
}

// DescribeNetwork reports the addressing of network without drawing
// anything. It rejects the same inputs as SampleNetwork.
func DescribeNetwork(network string) (model.NetworkInfo, error) {
	prefix, err := ParseNetwork(network)
	if err != nil {
		return model.NetworkInfo{}, err
	}

	usable := usableHosts(prefix)
	if usable == 0 {
		return model.NetworkInfo{}, &Error{Kind: KindNetworkTooSmall, Network: network, Err: ErrNetworkTooSmall}
	}

	base := addrToUint32(prefix.Addr())
	hostBits := 32 - prefix.Bits()
	mask := ^uint32(0) << hostBits
	broadcast := base | ^mask

	return model.NetworkInfo{
		Network:     prefix.String(),
		Address:     prefix.Addr().String(),
		PrefixLen:   prefix.Bits(),
		Netmask:     uint32ToAddr(mask).String(),
		Broadcast:   uint32ToAddr(broadcast).String(),
		Gateway:     uint32ToAddr(base + 1).String(),
		FirstHost:   uint32ToAddr(base + 1).String(),
		LastHost:    uint32ToAddr(broadcast - 1).String(),
		UsableHosts: usable,
	}, nil
}

// usableHosts counts host addresses excluding the network and broadcast
// addresses. /31 and /32 have none.
func usableHosts(prefix netip.Prefix) uint64 {
	if prefix.Bits() >= 31 {
		return 0
	}
	return (uint64(1) << (32 - prefix.Bits())) - 2
}

func addrToUint32(addr netip.Addr) uint32 {
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:])
}

func uint32ToAddr(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
