// Package sysinfo detects host facts used to seed stack defaults: platform
// flavor, the IDs containers should run as, timezone, and the LAN network.
package sysinfo

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform identifies the host flavor. NAS platforms change the default
// directory layout suggestions.
type Platform string

const (
	PlatformGeneric  Platform = "generic"
	PlatformUnraid   Platform = "unraid"
	PlatformSynology Platform = "synology"
	PlatformMacOS    Platform = "macos"
)

// Info holds everything detected about the host.
type Info struct {
	OS       string
	Platform Platform
	Hostname string
	PUID     string
	PGID     string
	Username string
	HomeDir  string
	Timezone string
	LANCIDR  string
}

// Detect gathers host facts. Every field has a safe fallback, so Detect
// never fails outright.
func Detect() Info {
	info := Info{
		OS:       runtime.GOOS,
		Platform: detectPlatform("/"),
		PUID:     "1000",
		PGID:     "1000",
		Timezone: detectTimezone("/"),
		LANCIDR:  DetectLANNetwork(),
	}

	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}

	if u, err := user.Current(); err == nil {
		info.Username = u.Username
		info.HomeDir = u.HomeDir
		if runtime.GOOS != "windows" {
			info.PUID = u.Uid
			info.PGID = u.Gid
		}
	}

	return info
}

// SuggestedRoot returns the conventional stack root for the platform.
func (i Info) SuggestedRoot() string {
	switch i.Platform {
	case PlatformUnraid:
		return "/mnt/user/appdata/easiarr"
	case PlatformSynology:
		return "/volume1/docker/easiarr"
	default:
		if i.HomeDir != "" {
			return filepath.Join(i.HomeDir, "easiarr")
		}
		return "/opt/easiarr"
	}
}

func detectPlatform(root string) Platform {
	if runtime.GOOS == "darwin" {
		return PlatformMacOS
	}
	if _, err := os.Stat(filepath.Join(root, "etc", "unraid-version")); err == nil {
		return PlatformUnraid
	}
	if _, err := os.Stat(filepath.Join(root, "etc", "synoinfo.conf")); err == nil {
		return PlatformSynology
	}
	return PlatformGeneric
}

func detectTimezone(root string) string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if data, err := os.ReadFile(filepath.Join(root, "etc", "timezone")); err == nil {
		if tz := strings.TrimSpace(string(data)); tz != "" {
			return tz
		}
	}
	// /etc/localtime is usually a symlink into the zoneinfo database.
	if target, err := os.Readlink(filepath.Join(root, "etc", "localtime")); err == nil {
		if idx := strings.Index(target, "zoneinfo/"); idx >= 0 {
			return target[idx+len("zoneinfo/"):]
		}
	}
	return "Etc/UTC"
}

// DetectLANNetwork returns the CIDR of the first up, non-loopback IPv4
// interface, falling back to the common home default.
func DetectLANNetwork() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "192.168.1.0/24"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP
			if ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			network := ip.Mask(ipNet.Mask)
			ones, _ := ipNet.Mask.Size()
			return fmt.Sprintf("%s/%d", network.String(), ones)
		}
	}
	return "192.168.1.0/24"
}
