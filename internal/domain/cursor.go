package domain

// CoordScale is the upper bound of the normalized coordinate space [0, CoordScale].
const CoordScale = 10000

type Platform string

const (
	PlatformMac     Platform = "m"
	PlatformWindows Platform = "w"
	PlatformLinux   Platform = "l"
)

// CursorSample is the last known pointer position of a remote relay session.
type CursorSample struct {
	ID       int64
	X        int
	Y        int
	Platform Platform
	Epoch    uint64
}

// ClampCoord forces a raw relay coordinate into [0, CoordScale].
func ClampCoord(v int) int {
	return min(max(v, 0), CoordScale)
}

// DetectPlatform maps a GOOS value to a relay platform tag. ok is false for
// platforms that do not share cursors.
func DetectPlatform(goos string) (Platform, bool) {
	switch goos {
	case "darwin":
		return PlatformMac, true
	case "windows":
		return PlatformWindows, true
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return PlatformLinux, true
	default:
		return "", false
	}
}
