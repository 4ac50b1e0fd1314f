// geigerdetect reports whether a GeigerRNG kit cable is attached, both
// through serial port enumeration and at the raw USB level.
package main

import (
	"fmt"
	"os"

	"github.com/RyanPierce/GeigerRNG/ftdiusb"
	"github.com/RyanPierce/GeigerRNG/kitserial"
)

func main() {
	port, err := kitserial.FindPort()
	switch {
	case err == nil:
		fmt.Printf("Serial port: %s\n", port)
	default:
		fmt.Println("No kit serial port found")
	}

	ok, devices, err := ftdiusb.IsCablePresent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "USB error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Println("No FTDI cable found (VID 0x0403 PID 0x6001)")
		return
	}
	for i, d := range devices {
		fmt.Printf("Cable %d: %s\n", i+1, d.Label())
		if d.Manufacturer != "" {
			fmt.Printf("  Manufacturer: %s\n", d.Manufacturer)
		}
	}
	if names, err := ftdiusb.FriendlyNames(); err == nil {
		for _, n := range names {
			fmt.Printf("  Driver: %s\n", n)
		}
	}
}
