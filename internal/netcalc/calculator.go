package netcalc

import (
	"fmt"
	"strconv"

	"github.com/martinsuchenak/devcalc/internal/model"
	"github.com/martinsuchenak/devcalc/internal/registry"
)

// Device name suffixes are drawn from [nameSuffixMin, nameSuffixMax]
const (
	nameSuffixMin = 100
	nameSuffixMax = 999
)

// Calculator derives device addressing. It holds no per-request state and
// is safe for concurrent use as long as its Source is.
type Calculator struct {
	src   Source
	ports *registry.Registry
}

// Option configures a Calculator
type Option func(*Calculator)

// WithSource sets the random source
func WithSource(src Source) Option {
	return func(c *Calculator) {
		c.src = src
	}
}

// WithRegistry sets the port synthesizer registry
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Calculator) {
		c.ports = reg
	}
}

// NewCalculator creates a calculator using DefaultSource and DefaultRegistry
// unless overridden
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		src:   DefaultSource(),
		ports: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the calculator's random source
func (c *Calculator) Source() Source {
	return c.src
}

// Calculate derives the address, MAC, gateway and ports of a device.
// Failures are always *Error.
func (c *Calculator) Calculate(req model.DeviceRequest) (*model.DeviceResult, error) {
	if req.Type == "" || req.Network == "" {
		return nil, &Error{Kind: KindMissingField, Err: ErrMissingFields}
	}
	if err := checkPortCount(req); err != nil {
		return nil, err
	}

	sample, err := SampleNetwork(c.src, req.Network)
	if err != nil {
		return nil, err
	}

	ip := sample.IP.String()
	mac := GenerateMAC(c.src)
	ports := c.ports.Lookup(req.Type)(req, ip)

	name := req.Name
	if name == "" {
		suffix := nameSuffixMin + c.src.Int64N(nameSuffixMax-nameSuffixMin+1)
		name = req.Type + "-" + strconv.FormatInt(suffix, 10)
	}

	return &model.DeviceResult{
		Name:    name,
		IP:      ip,
		MAC:     mac,
		Gateway: sample.Gateway.String(),
		Ports:   ports,
	}, nil
}

// Handle runs Calculate and wraps the result in an envelope
func (c *Calculator) Handle(req model.DeviceRequest) model.Outcome {
	outcome, _ := c.Evaluate(req)
	return outcome
}

// Evaluate is Handle that also returns the failure behind an error
// envelope. It never panics; a panic during calculation is reported as a
// KindUnexpected failure.
func (c *Calculator) Evaluate(req model.DeviceRequest) (outcome model.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindUnexpected, Network: req.Network, Err: fmt.Errorf("%v", r)}
			outcome = model.Failure(Message(err))
		}
	}()

	result, err := c.Calculate(req)
	if err != nil {
		return model.Failure(Message(err)), err
	}
	return model.Success(result), nil
}

// checkPortCount bounds the port table before anything is allocated
func checkPortCount(req model.DeviceRequest) error {
	n := max(req.PortsCount, len(req.Ports))
	if n > MaxPorts {
		return &Error{
			Kind:    KindInvalidRequest,
			Network: req.Network,
			Err:     fmt.Errorf("%w: %d requested, at most %d allowed", ErrTooManyPorts, n, MaxPorts),
		}
	}
	return nil
}
