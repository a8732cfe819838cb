package mpris

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-ini/ini"
)

var iconSizes = []string{"256x256", "128x128", "512x512", "96x96", "64x64", "48x48"}

// iconPath resolves a player's DesktopEntry to an icon file through the
// freedesktop data directories.
func iconPath(desktopEntry string) (string, error) {
	if desktopEntry == "" {
		return "", fmt.Errorf("player has no desktop entry")
	}

	entry, err := xdg.SearchDataFile(filepath.Join("applications", desktopEntry+".desktop"))
	if err != nil {
		return "", err
	}
	icon, err := desktopIcon(entry)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(icon) {
		return icon, nil
	}

	for _, size := range iconSizes {
		if p, err := xdg.SearchDataFile(filepath.Join("icons", "hicolor", size, "apps", icon+".png")); err == nil {
			return p, nil
		}
	}
	if p, err := xdg.SearchDataFile(filepath.Join("pixmaps", icon+".png")); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("no png icon found for %s", icon)
}

// desktopIcon reads the Icon key of the [Desktop Entry] group.
func desktopIcon(path string) (string, error) {
	entry, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return "", err
	}
	icon := strings.TrimSpace(entry.Section("Desktop Entry").Key("Icon").String())
	if icon == "" {
		return "", fmt.Errorf("%s has no icon", filepath.Base(path))
	}
	return icon, nil
}
