package mcp

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/martinsuchenak/devcalc/internal/netcalc"
	"github.com/paularlott/mcp"
)

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name    string
		input   []map[string]any
		want    []model.PortSpec
		wantErr bool
	}{
		{name: "empty", input: nil, want: nil},
		{
			name: "defaults left unset",
			input: []map[string]any{
				{},
				{"name": "uplink", "vlan": float64(20), "subnet_mask": "255.255.0.0"},
			},
			want: []model.PortSpec{
				{},
				{Name: "uplink", VLAN: model.IntPtr(20), SubnetMask: "255.255.0.0"},
			},
		},
		{
			name:  "explicit vlan zero kept",
			input: []map[string]any{{"vlan": float64(0)}},
			want:  []model.PortSpec{{VLAN: model.IntPtr(0)}},
		},
		{name: "fractional vlan", input: []map[string]any{{"vlan": 1.5}}, wantErr: true},
		{name: "string vlan", input: []map[string]any{{"vlan": "10"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePorts(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Ports mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptionalObjects(t *testing.T) {
	objects, err := optionalObjects(nil, mcp.ErrUnknownParameter)
	if err != nil || objects != nil {
		t.Errorf("Expected absent ports to be empty, got %v, %v", objects, err)
	}

	shapeErr := errors.New("parameter ports is not an array of objects")
	if _, err := optionalObjects(nil, shapeErr); !errors.Is(err, shapeErr) {
		t.Errorf("Expected malformed ports to be reported, got %v", err)
	}

	given := []map[string]any{{"vlan": float64(3)}}
	objects, err = optionalObjects(given, nil)
	if err != nil || len(objects) != 1 {
		t.Errorf("Expected ports to pass through, got %v, %v", objects, err)
	}
}

func TestFormatDevice(t *testing.T) {
	out := formatDevice(&model.DeviceResult{
		Name:    "switch-101",
		IP:      "10.0.0.7",
		MAC:     "00:11:22:33:44:55",
		Gateway: "10.0.0.1",
		Ports: []model.PortRecord{
			{Name: "port1", VLAN: 10},
			{IPAddress: "10.0.0.7", SubnetMask: "255.255.255.0", VLAN: 1},
		},
	})

	for _, want := range []string{
		"Name: switch-101\n",
		"Gateway: 10.0.0.1\n",
		"  - port1 vlan 10\n",
		"  - 10.0.0.7 mask 255.255.255.0 vlan 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatNetworkInfo(t *testing.T) {
	info, err := netcalc.DescribeNetwork("10.0.0.0/30")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := formatNetworkInfo(info)
	if !strings.Contains(out, "Hosts: 10.0.0.1 - 10.0.0.2 (2 usable)") {
		t.Errorf("Unexpected host range:\n%s", out)
	}
}

func TestServer_ToolsRegistered(t *testing.T) {
	s := NewServer(netcalc.NewCalculator(), "")

	names := map[string]bool{}
	for _, tool := range s.mcpServer.ListTools() {
		names[tool.Name] = true
	}
	for _, want := range []string{"device_calculate", "network_sample", "network_describe", "mac_generate"} {
		if !names[want] {
			t.Errorf("Expected tool %s to be registered", want)
		}
	}
}

func TestServer_BearerAuth(t *testing.T) {
	s := NewServer(netcalc.NewCalculator(), "secret")

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic secret"},
		{name: "wrong token", header: "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/mcp", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			s.GetHTTPHandler().ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", w.Code)
			}
		})
	}
}
