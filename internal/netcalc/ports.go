package netcalc

import (
	"fmt"

	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/martinsuchenak/devcalc/internal/registry"
)

// MaxPorts caps the port table of a single device
const MaxPorts = 4096

// DefaultRegistry returns a registry with the built-in port rules: switches
// get named VLAN ports, every other type gets addressed ports.
func DefaultRegistry() *registry.Registry {
	reg := registry.NewRegistry(AddressedPorts)
	reg.Register(model.DeviceTypeSwitch, SwitchPorts)
	return reg
}

// SwitchPorts numbers the requested ports from 1. PortsCount, when set,
// fixes the number of ports: missing specs get defaults and surplus specs
// are dropped. Switch ports never carry addressing.
func SwitchPorts(req model.DeviceRequest, _ string) []model.PortRecord {
	count := len(req.Ports)
	if req.PortsCount > 0 {
		count = req.PortsCount
	}
	count = min(count, MaxPorts)

	ports := make([]model.PortRecord, 0, count)
	for i := 0; i < count; i++ {
		var spec model.PortSpec
		if i < len(req.Ports) {
			spec = req.Ports[i]
		}

		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("port%d", i+1)
		}

		ports = append(ports, model.PortRecord{
			Name: name,
			VLAN: spec.VLANOrDefault(),
		})
	}
	return ports
}

// AddressedPorts gives every requested port the sampled address. Without
// requested ports the device gets a single default port.
func AddressedPorts(req model.DeviceRequest, ip string) []model.PortRecord {
	if len(req.Ports) == 0 {
		return []model.PortRecord{{
			IPAddress:  ip,
			SubnetMask: model.DefaultSubnetMask,
			VLAN:       model.DefaultVLAN,
		}}
	}

	ports := make([]model.PortRecord, 0, len(req.Ports))
	for _, spec := range req.Ports {
		ports = append(ports, model.PortRecord{
			IPAddress:  ip,
			SubnetMask: spec.SubnetMaskOrDefault(),
			VLAN:       spec.VLANOrDefault(),
		})
	}
	return ports
}
