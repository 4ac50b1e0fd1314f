//go:build !windows

package ftdiusb

// FriendlyNames is the non-Windows stub; driver-level names come only
// from SetupAPI. The USB descriptor strings in IsCablePresent cover
// other platforms.
func FriendlyNames() ([]string, error) {
	return nil, nil
}
