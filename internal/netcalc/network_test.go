package netcalc

import (
	"errors"
	"math/rand/v2"
	"net/netip"
	"testing"

	"pgregory.net/rapid"
)

func TestSampleNetwork_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		network string
		kind    Kind
		wantErr bool
	}{
		{name: "slash 24", network: "10.0.0.0/24"},
		{name: "slash 30", network: "192.168.1.0/30"},
		{name: "slash 8", network: "10.0.0.0/8"},
		{name: "slash 0", network: "0.0.0.0/0"},
		{name: "slash 31", network: "192.168.1.0/31", wantErr: true, kind: KindNetworkTooSmall},
		{name: "slash 32", network: "192.168.1.1/32", wantErr: true, kind: KindNetworkTooSmall},
		{name: "bare address", network: "192.168.1.1", wantErr: true, kind: KindNetworkTooSmall},
		{name: "bad prefix length", network: "10.0.0.0/33", wantErr: true, kind: KindInvalidNetwork},
		{name: "bad octet", network: "300.0.0.0/24", wantErr: true, kind: KindInvalidNetwork},
		{name: "garbage", network: "not-a-network", wantErr: true, kind: KindInvalidNetwork},
		{name: "empty prefix", network: "10.0.0.0/", wantErr: true, kind: KindInvalidNetwork},
		{name: "ipv6", network: "2001:db8::/64", wantErr: true, kind: KindInvalidNetwork},
	}

	src := rand.New(rand.NewPCG(1, 2))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := SampleNetwork(src, tt.network)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got sample %+v", tt.network, sample)
				}
				if got := KindOf(err); got != tt.kind {
					t.Errorf("Expected kind %v, got %v (%v)", tt.kind, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !sample.Network.Contains(sample.IP) {
				t.Errorf("IP %s outside network %s", sample.IP, sample.Network)
			}
		})
	}
}

func TestSampleNetwork_Slash30(t *testing.T) {
	src := rand.New(rand.NewPCG(7, 7))
	seen := map[string]bool{}

	for i := 0; i < 200; i++ {
		sample, err := SampleNetwork(src, "192.168.1.0/30")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		ip := sample.IP.String()
		if ip != "192.168.1.1" && ip != "192.168.1.2" {
			t.Fatalf("Expected IP in {192.168.1.1, 192.168.1.2}, got %s", ip)
		}
		if sample.Gateway.String() != "192.168.1.1" {
			t.Errorf("Expected gateway 192.168.1.1, got %s", sample.Gateway)
		}
		seen[ip] = true
	}

	if len(seen) != 2 {
		t.Errorf("Expected both usable hosts to be drawn, got %v", seen)
	}
}

func TestSampleNetwork_ExactDraws(t *testing.T) {
	tests := []struct {
		draw int64
		want string
	}{
		{draw: 0, want: "10.0.0.1"},
		{draw: 100, want: "10.0.0.101"},
		{draw: 253, want: "10.0.0.254"},
	}

	for _, tt := range tests {
		sample, err := SampleNetwork(newSeqSource(tt.draw), "10.0.0.0/24")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if sample.IP.String() != tt.want {
			t.Errorf("Draw %d: expected %s, got %s", tt.draw, tt.want, sample.IP)
		}
	}
}

func TestSampleNetwork_HostBitsNormalized(t *testing.T) {
	sample, err := SampleNetwork(newSeqSource(5), "192.168.1.77/24")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if sample.Network.String() != "192.168.1.0/24" {
		t.Errorf("Expected normalized network 192.168.1.0/24, got %s", sample.Network)
	}
	if sample.Gateway.String() != "192.168.1.1" {
		t.Errorf("Expected gateway 192.168.1.1, got %s", sample.Gateway)
	}
	if sample.IP.String() != "192.168.1.6" {
		t.Errorf("Expected IP 192.168.1.6, got %s", sample.IP)
	}
}

func TestSampleNetwork_ErrorDetails(t *testing.T) {
	_, err := SampleNetwork(DefaultSource(), "2001:db8::/64")
	if !errors.Is(err, ErrNotIPv4) {
		t.Errorf("Expected ErrNotIPv4, got %v", err)
	}

	_, err = SampleNetwork(DefaultSource(), "10.0.0.0/33")
	if !errors.Is(err, ErrInvalidCIDR) {
		t.Errorf("Expected ErrInvalidCIDR, got %v", err)
	}
	var calcErr *Error
	if !errors.As(err, &calcErr) || calcErr.Network != "10.0.0.0/33" {
		t.Errorf("Expected *Error carrying the raw network, got %#v", err)
	}

	_, err = SampleNetwork(DefaultSource(), "10.0.0.0/31")
	if !errors.Is(err, ErrNetworkTooSmall) {
		t.Errorf("Expected ErrNetworkTooSmall, got %v", err)
	}
	if err.Error() != "Invalid network: 10.0.0.0/31 - network too small to generate IP" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestSampleNetwork_UsableRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.Uint32().Draw(t, "addr")
		bits := rapid.IntRange(0, 30).Draw(t, "bits")
		seed := rapid.Uint64().Draw(t, "seed")

		prefix := netip.PrefixFrom(uint32ToAddr(raw), bits)
		sample, err := SampleNetwork(rand.New(rand.NewPCG(seed, seed)), prefix.String())
		if err != nil {
			t.Fatalf("sample %s: %v", prefix, err)
		}

		network := addrToUint32(prefix.Masked().Addr())
		broadcast := network | (^uint32(0) >> bits)
		ip := addrToUint32(sample.IP)

		if ip <= network || ip >= broadcast {
			t.Fatalf("IP %s outside usable range of %s", sample.IP, prefix)
		}
		if addrToUint32(sample.Gateway) != network+1 {
			t.Fatalf("gateway %s is not network+1 for %s", sample.Gateway, prefix)
		}
		if sample.Network != prefix.Masked() {
			t.Fatalf("network %s is not normalized %s", sample.Network, prefix.Masked())
		}
	})
}

func TestSampleNetwork_TooSmallProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.Uint32().Draw(t, "addr")
		bits := rapid.IntRange(31, 32).Draw(t, "bits")

		prefix := netip.PrefixFrom(uint32ToAddr(raw), bits)
		_, err := SampleNetwork(DefaultSource(), prefix.String())
		if KindOf(err) != KindNetworkTooSmall {
			t.Fatalf("expected NetworkTooSmall for %s, got %v", prefix, err)
		}
	})
}

func TestDescribeNetwork(t *testing.T) {
	info, err := DescribeNetwork("172.16.5.9/22")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	checks := map[string][2]string{
		"network":    {info.Network, "172.16.4.0/22"},
		"address":    {info.Address, "172.16.4.0"},
		"netmask":    {info.Netmask, "255.255.252.0"},
		"broadcast":  {info.Broadcast, "172.16.7.255"},
		"gateway":    {info.Gateway, "172.16.4.1"},
		"first host": {info.FirstHost, "172.16.4.1"},
		"last host":  {info.LastHost, "172.16.7.254"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("Expected %s %s, got %s", field, c[1], c[0])
		}
	}
	if info.PrefixLen != 22 {
		t.Errorf("Expected prefix length 22, got %d", info.PrefixLen)
	}
	if info.UsableHosts != 1022 {
		t.Errorf("Expected 1022 usable hosts, got %d", info.UsableHosts)
	}

	if _, err := DescribeNetwork("10.0.0.0/32"); KindOf(err) != KindNetworkTooSmall {
		t.Errorf("Expected NetworkTooSmall, got %v", err)
	}
	if _, err := DescribeNetwork("bogus"); KindOf(err) != KindInvalidNetwork {
		t.Errorf("Expected InvalidNetwork, got %v", err)
	}
}
