package calculate

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/olekukonko/tablewriter"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

// resolveFormat picks table output for terminals and JSON otherwise
func resolveFormat(format string, tty bool) (string, error) {
	switch strings.ToLower(format) {
	case "", formatAuto:
		if tty {
			return formatTable, nil
		}
		return formatJSON, nil
	case formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use auto, table or json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

// renderOutcome writes a calculation envelope. In table mode a failure is
// left to the caller to report.
func renderOutcome(w io.Writer, format string, outcome model.Outcome) error {
	if format == formatJSON {
		return writeJSON(w, outcome)
	}
	if !outcome.OK() {
		return nil
	}

	device := outcome.Data
	summary := newTable(w, []string{"Name", "IP", "Gateway", "MAC"})
	summary.Append([]string{device.Name, device.IP, device.Gateway, device.MAC})
	summary.Render()

	if len(device.Ports) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	ports := newTable(w, []string{"#", "Name", "IP Address", "Subnet Mask", "VLAN"})
	rows := make([][]string, 0, len(device.Ports))
	for i, port := range device.Ports {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			port.Name,
			port.IPAddress,
			port.SubnetMask,
			strconv.Itoa(port.VLAN),
		})
	}
	ports.AppendBulk(rows)
	ports.Render()
	return nil
}

func renderSample(w io.Writer, format string, sample model.NetworkSample) error {
	if format == formatJSON {
		return writeJSON(w, sample)
	}

	table := newTable(w, []string{"Network", "IP", "Gateway"})
	table.Append([]string{sample.Network, sample.IP, sample.Gateway})
	table.Render()
	return nil
}

func renderNetworkInfo(w io.Writer, format string, info model.NetworkInfo) error {
	if format == formatJSON {
		return writeJSON(w, info)
	}

	table := newTable(w, []string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"Network", info.Network},
		{"Netmask", info.Netmask},
		{"Prefix length", strconv.Itoa(info.PrefixLen)},
		{"Broadcast", info.Broadcast},
		{"Gateway", info.Gateway},
		{"First host", info.FirstHost},
		{"Last host", info.LastHost},
		{"Usable hosts", strconv.FormatUint(info.UsableHosts, 10)},
	})
	table.Render()
	return nil
}
