package titles

import (
	"os"
	"path/filepath"
	"testing"
)

const nesGamelist = `<?xml version="1.0"?>
<gameList>
	<game id="1">
		<path>/home/pi/RetroPie/roms/nes/smb.nes</path>
		<name>Super Mario Bros.</name>
	</game>
	<game>
		<path>/home/pi/RetroPie/roms/nes/zelda.nes</path>
	</game>
	<game>
		<path>/home/pi/RetroPie/roms/nes/smb.nes</path>
		<name>Duplicate</name>
	</game>
</gameList>
`

func writeGamelist(t *testing.T, root, system, content string) {
	t.Helper()
	dir := filepath.Join(root, system)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, GamelistName), []byte(content), 0o644); err != nil {
		t.Fatalf("write gamelist: %v", err)
	}
}

func TestResolveFromGamelist(t *testing.T) {
	root := t.TempDir()
	writeGamelist(t, root, "nes", nesGamelist)
	r := NewResolver(root)

	tests := []struct {
		name   string
		game   string
		system string
		want   string
	}{
		{name: "catalog entry", game: "/home/pi/RetroPie/roms/nes/smb.nes", system: "nes", want: "Super Mario Bros."},
		{name: "entry without name", game: "/home/pi/RetroPie/roms/nes/zelda.nes", system: "nes", want: "zelda.nes"},
		{name: "unknown game", game: "/home/pi/RetroPie/roms/nes/metroid.nes", system: "nes", want: "metroid.nes"},
		{name: "missing catalog", game: "/home/pi/RetroPie/roms/snes/smw.sfc", system: "snes", want: "smw.sfc"},
		{name: "same path other system", game: "/home/pi/RetroPie/roms/nes/smb.nes", system: "fds", want: "smb.nes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.game, tt.system); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveCachesCatalog(t *testing.T) {
	root := t.TempDir()
	writeGamelist(t, root, "nes", nesGamelist)
	r := NewResolver(root)
	if got := r.Resolve("/home/pi/RetroPie/roms/nes/smb.nes", "nes"); got != "Super Mario Bros." {
		t.Fatalf("unexpected title %q", got)
	}
	if err := os.Remove(filepath.Join(root, "nes", GamelistName)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := r.Resolve("/home/pi/RetroPie/roms/nes/smb.nes", "nes"); got != "Super Mario Bros." {
		t.Fatalf("expected cached title, got %q", got)
	}
}

func TestResolveBrokenCatalogFallsBack(t *testing.T) {
	root := t.TempDir()
	writeGamelist(t, root, "gb", "<gameList><game><path>")
	r := NewResolver(root)
	if got := r.Resolve("/roms/gb/tetris.gb", "gb"); got != "tetris.gb" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestResolveDisabled(t *testing.T) {
	var nilResolver *Resolver
	if got := nilResolver.Resolve("/roms/nes/a.nes", "nes"); got != "a.nes" {
		t.Fatalf("expected fallback from nil resolver, got %q", got)
	}
	if got := NewResolver("").Resolve("b.nes", "nes"); got != "b.nes" {
		t.Fatalf("expected fallback with empty roms dir, got %q", got)
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback("/roms/psx/ff7/"); got != "ff7" {
		t.Fatalf("unexpected fallback %q", got)
	}
	if got := Fallback("mario"); got != "mario" {
		t.Fatalf("unexpected fallback %q", got)
	}
	if got := Fallback("/"); got != "/" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
