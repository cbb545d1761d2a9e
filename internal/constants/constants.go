package constants

// PNGTargets maps file names in the icons directory to their edge size.
var PNGTargets = []struct {
	Name string
	Size int
}{
	{"32x32.png", 32},
	{"128x128.png", 128},
	{"128x128@2x.png", 256},
	{"icon.png", 256},
	{"512x512.png", 512},
}

// ICOSizes are the resolutions embedded in the Windows icon.
var ICOSizes = []int{16, 32, 48, 64, 128, 256}

const (
	DefaultOutDir = "gui/src-tauri/icons"

	SVGSourceFile       = "icon.svg"
	ICOFile             = "icon.ico"
	ICNSFile            = "icon.icns"
	ICNSPlaceholderFile = "icon.icns.png"

	ICNSMasterSize      = 1024
	ICNSPlaceholderSize = 512

	ICOBitCount = 32
)
