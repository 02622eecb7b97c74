package model

// NetworkSample is a randomly drawn host address within a network
type NetworkSample struct {
	Network string `json:"network"` // normalized CIDR
	IP      string `json:"ip"`
	Gateway string `json:"gateway"`
}

// NetworkInfo describes the addressing of an IPv4 network
type NetworkInfo struct {
	Network     string `json:"network"` // normalized CIDR
	Address     string `json:"address"`
	PrefixLen   int    `json:"prefix_len"`
	Netmask     string `json:"netmask"`
	Broadcast   string `json:"broadcast"`
	Gateway     string `json:"gateway"`
	FirstHost   string `json:"first_host"`
	LastHost    string `json:"last_host"`
	UsableHosts uint64 `json:"usable_hosts"`
}
