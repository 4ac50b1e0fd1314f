//go:build windows

package ftdiusb

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// GUID for all USB devices: {A5DCBF10-6530-11D2-901F-00C04FB951ED}
var guidDevInterfaceUsbDevice = windows.GUID{Data1: 0xA5DCBF10, Data2: 0x6530, Data3: 0x11D2, Data4: [8]byte{0x90, 0x1F, 0x00, 0xC0, 0x4F, 0xB9, 0x51, 0xED}}

const (
	_DIGCF_PRESENT         = 0x00000002
	_DIGCF_DEVICEINTERFACE = 0x00000010

	_SPDRP_HARDWAREID   = 0x00000001
	_SPDRP_FRIENDLYNAME = 0x0000000C
)

type spDevinfoData struct {
	cbSize    uint32
	ClassGuid windows.GUID
	DevInst   uint32
	Reserved  uintptr
}

var (
	modSetupapi                           = windows.NewLazySystemDLL("setupapi.dll")
	procSetupDiGetClassDevsW              = modSetupapi.NewProc("SetupDiGetClassDevsW")
	procSetupDiEnumDeviceInfo             = modSetupapi.NewProc("SetupDiEnumDeviceInfo")
	procSetupDiGetDeviceRegistryPropertyW = modSetupapi.NewProc("SetupDiGetDeviceRegistryPropertyW")
	procSetupDiDestroyDeviceInfoList      = modSetupapi.NewProc("SetupDiDestroyDeviceInfoList")
)

// FriendlyNames returns the SetupAPI friendly names of present FTDI
// cable devices, e.g. "USB Serial Port (COM5)". It complements the
// descriptor strings from IsCablePresent with the Windows driver view.
func FriendlyNames() ([]string, error) {
	match := fmt.Sprintf("VID_%04X&PID_%04X", ftdiVendorID, cableProductID)

	hDevInfo, _, callErr := procSetupDiGetClassDevsW.Call(
		uintptr(unsafe.Pointer(&guidDevInterfaceUsbDevice)),
		0, 0,
		uintptr(_DIGCF_PRESENT|_DIGCF_DEVICEINTERFACE),
	)
	if hDevInfo == uintptr(windows.InvalidHandle) {
		return nil, fmt.Errorf("SetupDiGetClassDevs: %w", callErr)
	}
	defer procSetupDiDestroyDeviceInfoList.Call(hDevInfo)

	var names []string
	for idx := uint32(0); ; idx++ {
		var data spDevinfoData
		data.cbSize = uint32(unsafe.Sizeof(data))
		r, _, _ := procSetupDiEnumDeviceInfo.Call(hDevInfo, uintptr(idx), uintptr(unsafe.Pointer(&data)))
		if r == 0 {
			break
		}
		hwIDs := readStringProperty(hDevInfo, &data, _SPDRP_HARDWAREID)
		if !strings.Contains(strings.ToUpper(hwIDs), match) {
			continue
		}
		if name := readStringProperty(hDevInfo, &data, _SPDRP_FRIENDLYNAME); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// readStringProperty fetches a registry property as a string; multi-sz
// values come back with their NULs replaced by spaces. Missing
// properties yield "".
func readStringProperty(hDevInfo uintptr, data *spDevinfoData, prop uint32) string {
	var needed uint32
	procSetupDiGetDeviceRegistryPropertyW.Call(
		hDevInfo,
		uintptr(unsafe.Pointer(data)),
		uintptr(prop),
		0, 0, 0,
		uintptr(unsafe.Pointer(&needed)),
	)
	if needed == 0 {
		return ""
	}
	buf := make([]uint16, (needed+1)/2+1)
	r, _, _ := procSetupDiGetDeviceRegistryPropertyW.Call(
		hDevInfo,
		uintptr(unsafe.Pointer(data)),
		uintptr(prop),
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(needed),
		0,
	)
	if r == 0 {
		return ""
	}
	for i, c := range buf {
		if c == 0 {
			buf[i] = ' '
		}
	}
	return strings.TrimSpace(windows.UTF16ToString(buf))
}
