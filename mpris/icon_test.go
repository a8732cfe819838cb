package mpris

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func withDataHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_DATA_DIRS", filepath.Join(dir, "empty"))
	xdg.Reload()
	return dir
}

func TestIconPath_Hicolor(t *testing.T) {
	dir := withDataHome(t)
	writeFile(t, filepath.Join(dir, "applications", "spotify.desktop"),
		"[Desktop Entry]\nName=Spotify\nIcon=spotify-client\n\n[Desktop Action Pause]\nIcon=pause\n")
	icon := filepath.Join(dir, "icons", "hicolor", "128x128", "apps", "spotify-client.png")
	writeFile(t, icon, "png")

	got, err := iconPath("spotify")
	require.NoError(t, err)
	assert.Equal(t, icon, got)
}

func TestIconPath_AbsoluteAndPixmaps(t *testing.T) {
	dir := withDataHome(t)
	writeFile(t, filepath.Join(dir, "applications", "abs.desktop"), "[Desktop Entry]\nIcon=/opt/abs/icon.png\n")
	writeFile(t, filepath.Join(dir, "applications", "pix.desktop"), "[Desktop Entry]\nIcon = pix\n")
	pixmap := filepath.Join(dir, "pixmaps", "pix.png")
	writeFile(t, pixmap, "png")

	got, err := iconPath("abs")
	require.NoError(t, err)
	assert.Equal(t, "/opt/abs/icon.png", got)

	got, err = iconPath("pix")
	require.NoError(t, err)
	assert.Equal(t, pixmap, got)
}

func TestIconPath_Missing(t *testing.T) {
	dir := withDataHome(t)
	writeFile(t, filepath.Join(dir, "applications", "noicon.desktop"), "[Desktop Entry]\nName=Nothing\n")
	writeFile(t, filepath.Join(dir, "applications", "nofile.desktop"), "[Desktop Entry]\nIcon=ghost\n")

	_, err := iconPath("")
	assert.Error(t, err)
	_, err = iconPath("not-installed")
	assert.Error(t, err)
	_, err = iconPath("noicon")
	assert.ErrorContains(t, err, "has no icon")
	_, err = iconPath("nofile")
	assert.ErrorContains(t, err, "no png icon")
}

func TestDesktopIcon(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    string
		wantErr string
	}{
		{
			name:    "localised keys and comments",
			content: "# generated\n[Desktop Entry]\nName=Music\nName[de]=Musik\nExec=music %U\nIcon=music#player\n",
			want:    "music#player",
		},
		{
			name:    "icon only in an action group",
			content: "[Desktop Entry]\nName=Music\n\n[Desktop Action Play]\nIcon=play\n",
			wantErr: "has no icon",
		},
		{
			name:    "empty icon",
			content: "[Desktop Entry]\nIcon=\n",
			wantErr: "has no icon",
		},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "entry"+string(rune('a'+i))+".desktop")
			writeFile(t, path, tt.content)

			got, err := desktopIcon(path)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := desktopIcon(filepath.Join(dir, "missing.desktop"))
	assert.Error(t, err)
}
