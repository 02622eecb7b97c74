package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/martinsuchenak/devcalc/internal/log"
	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/martinsuchenak/devcalc/internal/netcalc"
	"github.com/paularlott/mcp"
)

const serverVersion = "1.0.0"

// Server exposes the device calculator as MCP tools
type Server struct {
	mcpServer   *mcp.Server
	calc        *netcalc.Calculator
	bearerToken string
}

// NewServer creates a new MCP server backed by calc
func NewServer(calc *netcalc.Calculator, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("devcalc", serverVersion),
		calc:        calc,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.RegisterTool(
		mcp.NewTool("device_calculate", "Calculate the IP address, gateway, MAC address and port table for a device on a network",
			mcp.String("type", "Device type (switch, host, router, ...)", mcp.Required()),
			mcp.String("network", "IPv4 network in CIDR notation, e.g. 192.168.1.0/24", mcp.Required()),
			mcp.String("name", "Device name; generated when omitted"),
			mcp.Number("ports_count", "Number of switch ports to create"),
			mcp.ObjectArray("ports", "Port specifications",
				mcp.String("name", "Port name"),
				mcp.Number("vlan", "VLAN ID (default 1)"),
				mcp.String("subnet_mask", "Subnet mask (default 255.255.255.0)"),
			),
		),
		s.handleDeviceCalculate,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("network_sample", "Pick a random usable host address and the gateway for a network",
			mcp.String("network", "IPv4 network in CIDR notation", mcp.Required()),
		),
		s.handleNetworkSample,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("network_describe", "Describe a network: netmask, broadcast, gateway and usable host range",
			mcp.String("network", "IPv4 network in CIDR notation", mcp.Required()),
		),
		s.handleNetworkDescribe,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("mac_generate", "Generate a random MAC address"),
		s.handleMACGenerate,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token authentication
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.bearerToken)) != 1 {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

func (s *Server) handleDeviceCalculate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceType, err := req.String("type")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("type is required: " + err.Error())
	}
	network, err := req.String("network")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("network is required: " + err.Error())
	}

	objects, err := optionalObjects(req.ObjectSlice("ports"))
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("invalid ports: " + err.Error())
	}
	ports, err := parsePorts(objects)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("invalid ports: " + err.Error())
	}

	deviceReq := model.DeviceRequest{
		Type:       deviceType,
		Network:    network,
		Name:       req.StringOr("name", ""),
		PortsCount: req.IntOr("ports_count", 0),
		Ports:      ports,
	}

	log.Debug("MCP device calculate request", "type", deviceType, "network", network, "ports", len(ports))
	outcome, err := s.calc.Evaluate(deviceReq)
	if err != nil {
		if netcalc.KindOf(err) == netcalc.KindUnexpected {
			log.Error("MCP device calculation failed", "error", err)
			return nil, mcp.NewToolErrorInternal(outcome.Message)
		}
		log.Warn("MCP device calculation rejected", "kind", netcalc.KindOf(err), "error", err)
		return nil, mcp.NewToolErrorInvalidParams(outcome.Message)
	}

	return mcp.NewToolResponseText(formatDevice(outcome.Data)), nil
}

func (s *Server) handleNetworkSample(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	network, err := req.String("network")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("network is required: " + err.Error())
	}

	sample, err := netcalc.SampleNetwork(s.calc.Source(), network)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams(err.Error())
	}

	m := sample.ToModel()
	return mcp.NewToolResponseText(fmt.Sprintf("Network: %s\nIP: %s\nGateway: %s\n", m.Network, m.IP, m.Gateway)), nil
}

func (s *Server) handleNetworkDescribe(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	network, err := req.String("network")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("network is required: " + err.Error())
	}

	info, err := netcalc.DescribeNetwork(network)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams(err.Error())
	}

	return mcp.NewToolResponseText(formatNetworkInfo(info)), nil
}

func (s *Server) handleMACGenerate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	return mcp.NewToolResponseText(netcalc.GenerateMAC(s.calc.Source())), nil
}

// optionalObjects treats an absent array argument as empty; any other
// lookup error means the argument is present with the wrong shape
func optionalObjects(objects []map[string]any, err error) ([]map[string]any, error) {
	if errors.Is(err, mcp.ErrUnknownParameter) {
		return nil, nil
	}
	return objects, err
}

// parsePorts converts tool arguments to port specs. Numbers arrive as
// float64 from the JSON decoder.
func parsePorts(objects []map[string]any) ([]model.PortSpec, error) {
	if len(objects) == 0 {
		return nil, nil
	}

	ports := make([]model.PortSpec, 0, len(objects))
	for i, obj := range objects {
		var port model.PortSpec

		if name, ok := obj["name"].(string); ok {
			port.Name = name
		}

		switch v := obj["vlan"].(type) {
		case nil:
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("ports[%d]: vlan must be a whole number", i)
			}
			port.VLAN = model.IntPtr(int(v))
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return nil, fmt.Errorf("ports[%d]: vlan must be a whole number", i)
			}
			port.VLAN = model.IntPtr(int(n))
		default:
			return nil, fmt.Errorf("ports[%d]: vlan must be a number", i)
		}

		if mask, ok := obj["subnet_mask"].(string); ok {
			port.SubnetMask = mask
		}

		ports = append(ports, port)
	}
	return ports, nil
}

func formatDevice(device *model.DeviceResult) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Name: %s\n", device.Name))
	result.WriteString(fmt.Sprintf("IP: %s\n", device.IP))
	result.WriteString(fmt.Sprintf("Gateway: %s\n", device.Gateway))
	result.WriteString(fmt.Sprintf("MAC: %s\n", device.MAC))
	if len(device.Ports) > 0 {
		result.WriteString("Ports:\n")
		for _, port := range device.Ports {
			label := port.Name
			if label == "" {
				label = port.IPAddress
			}
			if port.SubnetMask != "" {
				result.WriteString(fmt.Sprintf("  - %s mask %s vlan %d\n", label, port.SubnetMask, port.VLAN))
			} else {
				result.WriteString(fmt.Sprintf("  - %s vlan %d\n", label, port.VLAN))
			}
		}
	}
	return result.String()
}

func formatNetworkInfo(info model.NetworkInfo) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Network: %s\n", info.Network))
	result.WriteString(fmt.Sprintf("Netmask: %s\n", info.Netmask))
	result.WriteString(fmt.Sprintf("Broadcast: %s\n", info.Broadcast))
	result.WriteString(fmt.Sprintf("Gateway: %s\n", info.Gateway))
	result.WriteString(fmt.Sprintf("Hosts: %s - %s (%d usable)\n", info.FirstHost, info.LastHost, info.UsableHosts))
	return result.String()
}

// GetHTTPHandler returns the HTTP handler for the MCP server
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", serverVersion)
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}
