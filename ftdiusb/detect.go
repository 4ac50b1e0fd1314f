// Package ftdiusb checks for the GeigerRNG kit's FTDI TTL serial cable
// at the raw USB level. The serial enumeration in package kitserial is
// the normal path; this package answers the narrower question "is the
// cable physically plugged in" even when no serial driver has claimed
// it, plus a richer SetupAPI view on Windows.
package ftdiusb

import (
	"fmt"

	"github.com/google/gousb"
)

// FTDI vendor/product for the TTL-232R cable family.
const (
	ftdiVendorID   = 0x0403
	cableProductID = 0x6001
)

// DeviceInfo contains key metadata for a detected cable.
//
// String fields may be empty if the descriptor strings could not be read
// on the current system.
type DeviceInfo struct {
	// Bus and Address locate the device on the USB topology.
	Bus     int
	Address int
	// Manufacturer, Product and SerialNumber are the USB descriptor
	// strings, e.g. "FTDI", "TTL232R-3V3".
	Manufacturer string
	Product      string
	SerialNumber string
}

// Label returns a human-friendly one-line description.
func (d DeviceInfo) Label() string {
	s := fmt.Sprintf("bus %d addr %d", d.Bus, d.Address)
	if d.Product != "" {
		s += " " + d.Product
	}
	if d.SerialNumber != "" {
		s += " (" + d.SerialNumber + ")"
	}
	return s
}

// IsCablePresent returns whether an FTDI cable (VID 0x0403, PID 0x6001)
// is present and a slice of device infos. Descriptor string read
// failures are not fatal; the corresponding fields stay empty.
func IsCablePresent() (bool, []DeviceInfo, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(ftdiVendorID) && desc.Product == gousb.ID(cableProductID)
	})
	for _, d := range devs {
		defer d.Close()
	}
	if err != nil && len(devs) == 0 {
		return false, nil, fmt.Errorf("enumerating USB devices: %w", err)
	}

	infos := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		info := DeviceInfo{
			Bus:     d.Desc.Bus,
			Address: d.Desc.Address,
		}
		if s, err := d.Manufacturer(); err == nil {
			info.Manufacturer = s
		}
		if s, err := d.Product(); err == nil {
			info.Product = s
		}
		if s, err := d.SerialNumber(); err == nil {
			info.SerialNumber = s
		}
		infos = append(infos, info)
	}
	return len(infos) > 0, infos, nil
}
