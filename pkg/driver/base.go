package driver

import "sync/atomic"

// BaseDriver implements the Base interface's bookkeeping (type, capability
// set, initialization flag) so each concrete driver only needs to embed it
// and implement the capability interfaces it declares.
type BaseDriver struct {
	driverType   Type
	capabilities map[Capability]bool
	initialized  atomic.Bool
}

// NewBaseDriver constructs a BaseDriver declaring the given capability set.
func NewBaseDriver(t Type, caps ...Capability) BaseDriver {
	set := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return BaseDriver{driverType: t, capabilities: set}
}

func (b *BaseDriver) GetType() Type { return b.driverType }

func (b *BaseDriver) HasCapability(c Capability) bool { return b.capabilities[c] }

func (b *BaseDriver) IsInitialized() bool { return b.initialized.Load() }

// MarkInitialized is called by a concrete driver's Initialize once its
// backend handshake succeeds.
func (b *BaseDriver) MarkInitialized() { b.initialized.Store(true) }
