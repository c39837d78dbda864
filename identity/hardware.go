// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Hardware is the cross-browser device profile sent by the web collector
// as "WxH|OS|Timezone|threads". It deliberately leaves out pixel ratio and
// color depth, which change with browser zoom and settings.
type Hardware struct {
	ScreenWidth  int
	ScreenHeight int
	OS           string
	Timezone     string
	// Threads is 0 when the browser does not report hardware concurrency
	Threads int
}

var screenPattern = regexp.MustCompile(`^(\d{1,5})\s*[xX]\s*(\d{1,5})$`)

// ParseHardware parses the collector's profile format
func ParseHardware(s string) (Hardware, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 {
		return Hardware{}, fmt.Errorf("hardware profile: want 4 fields, got %d", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	m := screenPattern.FindStringSubmatch(parts[0])
	if m == nil {
		return Hardware{}, fmt.Errorf("hardware profile: bad screen %q", parts[0])
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])

	var threads int
	if t := parts[3]; t != "" && !strings.EqualFold(t, "unknown") {
		n, err := strconv.Atoi(t)
		if err != nil || n < 0 {
			return Hardware{}, fmt.Errorf("hardware profile: bad thread count %q", t)
		}
		threads = n
	}

	return Hardware{
		ScreenWidth:  w,
		ScreenHeight: h,
		OS:           NormalizeOS(parts[1]),
		Timezone:     parts[2],
		Threads:      threads,
	}, nil
}

func (h Hardware) String() string {
	threads := "unknown"
	if h.Threads > 0 {
		threads = strconv.Itoa(h.Threads)
	}
	return fmt.Sprintf("%dx%d|%s|%s|%s", h.ScreenWidth, h.ScreenHeight, h.OS, h.Timezone, threads)
}

// CanonicalHardwareProfile re-renders a collector profile in canonical form
// so cosmetic differences (spacing, OS spelling) do not split one device
// into two. A missing OS is filled in from the User-Agent. Profiles in any
// other format are opaque and only trimmed.
func CanonicalHardwareProfile(profile, userAgent string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return ""
	}
	hw, err := ParseHardware(profile)
	if err != nil {
		return profile
	}
	if hw.OS == "" {
		hw.OS = OSFamily(userAgent)
	}
	return hw.String()
}

// NormalizeOS maps common spellings onto the collector's OS families.
// Unknown names are returned trimmed but otherwise unchanged.
func NormalizeOS(os string) string {
	os = strings.TrimSpace(os)
	switch strings.ToLower(os) {
	case "windows", "win", "win32", "win64":
		return "Windows"
	case "mac", "macos", "macintosh", "osx", "mac os x":
		return "Mac"
	case "android":
		return "Android"
	case "ios", "iphone", "ipad", "ipod", "ipados":
		return "iOS"
	case "linux":
		return "Linux"
	case "other":
		return "Other"
	}
	return os
}

// OSFamily classifies a User-Agent the same way the web collector does
func OSFamily(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return "Windows"
	case strings.Contains(userAgent, "Macintosh"):
		return "Mac"
	case strings.Contains(userAgent, "Android"):
		return "Android"
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"), strings.Contains(userAgent, "iPod"):
		return "iOS"
	// Android user agents also contain Linux
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	}
	return "Other"
}
