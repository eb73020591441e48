package driver

import (
	"context"

	"github.com/cloudcrate/filegate/pkg/apperrors"
)

// requiredInterfaceByCapability maps each capability to the Go interface a
// driver must satisfy to declare it. Grounded on the teacher's capability
// type-assertion pattern (pkg/content/capabilities.go), generalized from a
// single flat interface set into a per-capability map so DriverFactory can
// report exactly which contract a driver breaks.
var requiredInterfaceByCapability = map[Capability]func(driver interface{}) bool{
	CapReader:       func(d interface{}) bool { _, ok := d.(Reader); return ok },
	CapWriter:       func(d interface{}) bool { _, ok := d.(Writer); return ok },
	CapPresigned:    func(d interface{}) bool { _, ok := d.(Presigner); return ok },
	CapMultipart:    func(d interface{}) bool { _, ok := d.(Multipart); return ok },
	CapUpstreamHTTP: func(d interface{}) bool { _, ok := d.(UpstreamHTTP); return ok },
	CapAtomic:       func(d interface{}) bool { _, ok := d.(Atomic); return ok },
	CapDirectLink:   func(d interface{}) bool { _, ok := d.(DirectLinkProvider); return ok },
	CapSearch:       func(d interface{}) bool { _, ok := d.(Searcher); return ok },
	CapProxy:        func(d interface{}) bool { _, ok := d.(Proxy); return ok },
}

// verifyContract checks that driver implements Base and every interface its
// declared capability set requires. It is run once, at creation time,
// rather than on every call, so a misconfigured driver fails fast instead of
// surfacing as a confusing runtime panic deep in a request handler.
func verifyContract(driverType Type, d Base) error {
	if d.GetType() != driverType {
		return apperrors.DriverContract("driver %s reports GetType()=%s", driverType, d.GetType())
	}

	for _, capability := range allCapabilities {
		declared := d.HasCapability(capability)
		check, known := requiredInterfaceByCapability[capability]
		if !known {
			continue
		}
		satisfies := check(d)
		if declared && !satisfies {
			return apperrors.DriverContract("driver %s declares capability %s but does not implement it", driverType, capability)
		}
		if !declared && satisfies {
			// Implementing the interface without declaring the capability is
			// tolerated: it just means the capability is intentionally
			// unused, e.g. a driver that embeds another for code reuse.
			continue
		}
	}
	return nil
}

var allCapabilities = []Capability{
	CapReader, CapWriter, CapDirectLink, CapPresigned, CapMultipart,
	CapAtomic, CapProxy, CapSearch, CapUpstreamHTTP,
}

// Constructor builds a driver instance from its StorageConfig params and
// decrypted credentials blob. Returned drivers are not yet Initialize'd;
// DriverFactory.Create calls Initialize after the contract check passes.
type Constructor func(params map[string]any, credentials map[string]any) (Base, error)

// ConnectivityTester probes a candidate config without constructing a
// long-lived driver, used by the admin UI's "test connection" action.
type ConnectivityTester func(params map[string]any, credentials map[string]any) ConnectivityReport

// Registration is everything DriverFactory needs to know about one driver
// implementation.
type Registration struct {
	Type         Type
	Capabilities []Capability
	New          Constructor
	Test         ConnectivityTester
}

// Factory constructs and contract-verifies drivers by Type (C4).
type Factory struct {
	registrations map[Type]Registration
}

// NewFactory constructs an empty Factory; callers register drivers via
// Register before the first Create call.
func NewFactory() *Factory {
	return &Factory{registrations: make(map[Type]Registration)}
}

// Register adds a driver implementation to the factory. Re-registering a
// Type overwrites the previous registration, which is useful in tests.
func (f *Factory) Register(reg Registration) {
	f.registrations[reg.Type] = reg
}

// Registered reports whether a driver Type has a registration.
func (f *Factory) Registered(t Type) bool {
	_, ok := f.registrations[t]
	return ok
}

// Create builds, contract-checks, and initializes a driver for the given
// type and config. Returned errors are always *apperrors.Error: code
// CodeValidation for an unregistered type, otherwise CodeDriverContract or
// CodeDriverError.
func (f *Factory) Create(ctx context.Context, storageType Type, params map[string]any, credentials map[string]any) (Base, error) {
	reg, ok := f.registrations[storageType]
	if !ok {
		return nil, apperrors.Validation("no driver registered for storage type %s", storageType)
	}

	d, err := reg.New(params, credentials)
	if err != nil {
		return nil, apperrors.Driver(err, "failed to construct %s driver", storageType)
	}

	if err := verifyContract(storageType, d); err != nil {
		return nil, err
	}

	declared := map[Capability]bool{}
	for _, c := range reg.Capabilities {
		declared[c] = true
	}
	for _, c := range allCapabilities {
		if d.HasCapability(c) != declared[c] {
			return nil, apperrors.DriverContract(
				"driver %s capability mismatch: HasCapability(%s)=%v but registration declares %v",
				storageType, c, d.HasCapability(c), declared[c])
		}
	}

	if err := d.Initialize(ctx); err != nil {
		return nil, apperrors.Driver(err, "failed to initialize %s driver", storageType)
	}

	return d, nil
}

// Test runs a registered driver's connectivity probe without constructing a
// long-lived instance.
func (f *Factory) Test(storageType Type, params map[string]any, credentials map[string]any) (ConnectivityReport, error) {
	reg, ok := f.registrations[storageType]
	if !ok {
		return ConnectivityReport{}, apperrors.Validation("no driver registered for storage type %s", storageType)
	}
	if reg.Test == nil {
		return ConnectivityReport{OK: true, Message: "connectivity test not implemented for this driver"}, nil
	}
	return reg.Test(params, credentials), nil
}
