package model

// Device types with dedicated port handling
const (
	DeviceTypeSwitch = "switch"
	DeviceTypeHost   = "host"
	DeviceTypeRouter = "router"
)

// Port defaults applied when a port spec leaves a field unset
const (
	DefaultVLAN       = 1
	DefaultSubnetMask = "255.255.255.0"
)

// DeviceRequest describes the device to calculate addressing for
type DeviceRequest struct {
	Type       string     `json:"type"`
	Network    string     `json:"network"` // CIDR notation, e.g., "192.168.1.0/24"
	Name       string     `json:"name,omitempty"`
	PortsCount int        `json:"ports_count,omitempty"` // switch only
	Ports      []PortSpec `json:"ports,omitempty"`
}

// PortSpec is the caller's description of a single port
type PortSpec struct {
	Name       string `json:"name,omitempty"` // switch only
	VLAN       *int   `json:"vlan,omitempty"`
	SubnetMask string `json:"subnet_mask,omitempty"`
}

// VLANOrDefault returns the port VLAN, or DefaultVLAN when unset
func (p PortSpec) VLANOrDefault() int {
	if p.VLAN == nil {
		return DefaultVLAN
	}
	return *p.VLAN
}

// SubnetMaskOrDefault returns the port subnet mask, or DefaultSubnetMask when unset
func (p PortSpec) SubnetMaskOrDefault() string {
	if p.SubnetMask == "" {
		return DefaultSubnetMask
	}
	return p.SubnetMask
}

// PortRecord is a calculated port. Switch ports carry Name and VLAN only,
// all other device types carry IPAddress, SubnetMask and VLAN.
type PortRecord struct {
	Name       string `json:"name,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	SubnetMask string `json:"subnet_mask,omitempty"`
	VLAN       int    `json:"vlan"`
}

// DeviceResult is the calculated device
type DeviceResult struct {
	Name    string       `json:"name"`
	IP      string       `json:"ip"`
	MAC     string       `json:"mac"`
	Gateway string       `json:"gateway"`
	Ports   []PortRecord `json:"ports"`
}

// IntPtr returns a pointer to v, for building port specs
func IntPtr(v int) *int {
	return &v
}
