package netcalc

import (
	"errors"
	"fmt"
)

// Kind classifies calculation failures so callers can branch without
// inspecting message text
type Kind int

const (
	KindUnexpected Kind = iota
	KindMissingField
	KindInvalidNetwork
	KindNetworkTooSmall
	KindInvalidRequest
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "MissingField"
	case KindInvalidNetwork:
		return "InvalidNetwork"
	case KindNetworkTooSmall:
		return "NetworkTooSmall"
	case KindInvalidRequest:
		return "InvalidRequest"
	default:
		return "UnexpectedFailure"
	}
}

var (
	ErrMissingFields   = errors.New("Missing required fields: 'type' and 'network'")
	ErrInvalidCIDR     = errors.New("invalid CIDR notation")
	ErrNotIPv4         = errors.New("not an IPv4 network")
	ErrNetworkTooSmall = errors.New("network too small to generate IP")
	ErrTooManyPorts    = errors.New("too many ports")
)

// Error is returned by every failing netcalc operation
type Error struct {
	Kind    Kind
	Network string // raw network text as given by the caller
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingField:
		return e.Err.Error()
	case KindInvalidNetwork, KindNetworkTooSmall:
		return fmt.Sprintf("Invalid network: %s - %v", e.Network, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnexpected when err is not a *Error
func KindOf(err error) Kind {
	var calcErr *Error
	if errors.As(err, &calcErr) {
		return calcErr.Kind
	}
	return KindUnexpected
}

// Message renders err the way it is reported in a failure envelope.
// Missing fields are reported as is, everything else is prefixed with
// "Calculation error: ".
func Message(err error) string {
	if KindOf(err) == KindMissingField {
		return err.Error()
	}
	return "Calculation error: " + err.Error()
}

func invalidNetwork(network string, err error) error {
	return &Error{Kind: KindInvalidNetwork, Network: network, Err: err}
}
