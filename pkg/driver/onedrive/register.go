package onedrive

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

// Registration adapts Driver to driver.Registration for DriverFactory.
func Registration() driver.Registration {
	return driver.Registration{
		Type:         driver.TypeOneDrive,
		Capabilities: []driver.Capability{driver.CapReader, driver.CapWriter, driver.CapMultipart},
		New:          construct,
		Test:         test,
	}
}

func decodeParams(raw map[string]any) (Params, error) {
	var p Params
	if err := mapstructure.Decode(raw, &p); err != nil {
		return Params{}, apperrors.Validation("invalid onedrive driver params: %v", err)
	}
	return p, nil
}

func decodeCredentials(raw map[string]any) (Credentials, error) {
	var c Credentials
	if err := mapstructure.Decode(raw, &c); err != nil {
		return Credentials{}, apperrors.Validation("invalid onedrive driver credentials: %v", err)
	}
	return c, nil
}

func construct(params map[string]any, credentialsRaw map[string]any) (driver.Base, error) {
	p, err := decodeParams(params)
	if err != nil {
		return nil, err
	}
	c, err := decodeCredentials(credentialsRaw)
	if err != nil {
		return nil, err
	}
	return New(p, c)
}

func test(params map[string]any, credentialsRaw map[string]any) driver.ConnectivityReport {
	p, err := decodeParams(params)
	if err != nil {
		return driver.ConnectivityReport{OK: false, Message: err.Error()}
	}
	c, err := decodeCredentials(credentialsRaw)
	if err != nil {
		return driver.ConnectivityReport{OK: false, Message: err.Error()}
	}
	start := time.Now()
	d, err := New(p, c)
	if err != nil {
		return driver.ConnectivityReport{OK: false, Message: err.Error()}
	}
	if err := d.Initialize(context.Background()); err != nil {
		return driver.ConnectivityReport{OK: false, Message: err.Error()}
	}
	return driver.ConnectivityReport{OK: true, Latency: time.Since(start)}
}
