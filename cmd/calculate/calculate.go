package calculate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/martinsuchenak/devcalc/internal/netcalc"
	"github.com/paularlott/cli"
	"golang.org/x/term"
)

// Commands returns the offline calculation commands
func Commands() []*cli.Command {
	return []*cli.Command{
		CalculateCommand(),
		SampleCommand(),
		DescribeCommand(),
		MACCommand(),
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "output",
			Aliases:      []string{"o"},
			Usage:        "Output format: auto, table, or json",
			DefaultValue: "auto",
		},
		&cli.IntFlag{
			Name:  "seed",
			Usage: "Seed for reproducible output (0 = random)",
		},
	}
}

// CalculateCommand calculates a device's addressing without a server
func CalculateCommand() *cli.Command {
	return &cli.Command{
		Name:        "calculate",
		Usage:       "Calculate device addressing",
		Description: "Calculate the IP, gateway, MAC address and port table for a device on a network",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "Device type (switch, host, router, ...)", Required: true},
			&cli.StringFlag{Name: "network", Usage: "IPv4 network in CIDR notation", Required: true},
			&cli.StringFlag{Name: "name", Usage: "Device name, generated when empty"},
			&cli.IntFlag{Name: "ports-count", Usage: "Number of switch ports"},
			&cli.StringFlag{Name: "vlans", Usage: "Comma-separated port VLANs, empty entries use the default"},
			&cli.StringFlag{Name: "subnet-masks", Usage: "Comma-separated port subnet masks"},
		}, outputFlags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			format, err := resolveFormat(cmd.GetString("output"), isTerminal())
			if err != nil {
				return err
			}

			req, err := buildRequest(
				cmd.GetString("type"),
				cmd.GetString("network"),
				cmd.GetString("name"),
				cmd.GetInt("ports-count"),
				cmd.GetString("vlans"),
				cmd.GetString("subnet-masks"),
			)
			if err != nil {
				return err
			}

			outcome, calcErr := newCalculator(cmd).Evaluate(req)
			if err := renderOutcome(os.Stdout, format, outcome); err != nil {
				return err
			}
			if calcErr != nil && format != formatJSON {
				return errors.New(outcome.Message)
			}
			return calcErr
		},
	}
}

// SampleCommand draws a host address from a network
func SampleCommand() *cli.Command {
	return &cli.Command{
		Name:        "sample",
		Usage:       "Pick a random host address",
		Description: "Pick a random usable host address and the gateway for a network",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "network", Required: true},
		},
		Flags: outputFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			format, err := resolveFormat(cmd.GetString("output"), isTerminal())
			if err != nil {
				return err
			}

			sample, err := netcalc.SampleNetwork(newCalculator(cmd).Source(), cmd.GetStringArg("network"))
			if err != nil {
				return err
			}
			return renderSample(os.Stdout, format, sample.ToModel())
		},
	}
}

// DescribeCommand prints the addressing of a network
func DescribeCommand() *cli.Command {
	return &cli.Command{
		Name:        "describe",
		Usage:       "Describe a network",
		Description: "Show the netmask, broadcast, gateway and usable host range of a network",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "network", Required: true},
		},
		Flags: outputFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			format, err := resolveFormat(cmd.GetString("output"), isTerminal())
			if err != nil {
				return err
			}

			info, err := netcalc.DescribeNetwork(cmd.GetStringArg("network"))
			if err != nil {
				return err
			}
			return renderNetworkInfo(os.Stdout, format, info)
		},
	}
}

// MACCommand prints random MAC addresses
func MACCommand() *cli.Command {
	return &cli.Command{
		Name:        "mac",
		Usage:       "Generate MAC addresses",
		Description: "Generate one or more random MAC addresses",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "Number of addresses", DefaultValue: 1},
			&cli.IntFlag{Name: "seed", Usage: "Seed for reproducible output (0 = random)"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			src := newCalculator(cmd).Source()
			for i := 0; i < cmd.GetInt("count"); i++ {
				fmt.Println(netcalc.GenerateMAC(src))
			}
			return nil
		},
	}
}

func newCalculator(cmd *cli.Command) *netcalc.Calculator {
	if seed := cmd.GetInt("seed"); seed != 0 {
		return netcalc.NewCalculator(netcalc.WithSource(netcalc.NewSeededSource(uint64(seed))))
	}
	return netcalc.NewCalculator()
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// buildRequest assembles a device request from flag values. The port
// count is the longer of the two lists; missing entries take defaults.
func buildRequest(deviceType, network, name string, portsCount int, vlans, masks string) (model.DeviceRequest, error) {
	req := model.DeviceRequest{
		Type:       deviceType,
		Network:    network,
		Name:       name,
		PortsCount: portsCount,
	}

	vlanList, err := parseVLANs(vlans)
	if err != nil {
		return req, err
	}
	maskList := splitList(masks)

	n := max(len(vlanList), len(maskList))
	if n == 0 {
		return req, nil
	}

	req.Ports = make([]model.PortSpec, n)
	for i := range req.Ports {
		if i < len(vlanList) {
			req.Ports[i].VLAN = vlanList[i]
		}
		if i < len(maskList) {
			req.Ports[i].SubnetMask = maskList[i]
		}
	}
	return req, nil
}

// parseVLANs parses a comma-separated VLAN list; an empty entry is nil
func parseVLANs(s string) ([]*int, error) {
	parts := splitList(s)
	vlans := make([]*int, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid vlan %q at position %d", p, i+1)
		}
		vlans[i] = model.IntPtr(v)
	}
	return vlans, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
