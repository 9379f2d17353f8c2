// Package titles resolves display names for games from EmulationStation gamelists.
package titles

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
)

// GamelistName is the catalog file looked up in each system's ROM directory.
const GamelistName = "gamelist.xml"

type gameList struct {
	XMLName xml.Name   `xml:"gameList"`
	Games   []gameNode `xml:"game"`
}

type gameNode struct {
	Path string `xml:"path"`
	Name string `xml:"name"`
}

// Resolver maps (game, system) pairs to titles. It is not safe for concurrent use.
type Resolver struct {
	romsDir  string
	catalogs map[string]map[string]string
}

// NewResolver returns a Resolver reading catalogs under romsDir. An empty romsDir
// disables lookups and every game resolves to its base filename.
func NewResolver(romsDir string) *Resolver {
	return &Resolver{
		romsDir:  romsDir,
		catalogs: map[string]map[string]string{},
	}
}

// Resolve returns the catalog name for game on system, or the base filename of
// game when no catalog entry exists.
func (r *Resolver) Resolve(game, system string) string {
	fallback := Fallback(game)
	if r == nil || r.romsDir == "" {
		return fallback
	}
	if name := r.catalog(system)[game]; name != "" {
		return name
	}
	return fallback
}

// Fallback derives a display name from a game identifier.
func Fallback(game string) string {
	trimmed := strings.TrimRight(game, "/")
	if trimmed == "" {
		return game
	}
	return filepath.Base(trimmed)
}

func (r *Resolver) catalog(system string) map[string]string {
	if names, ok := r.catalogs[system]; ok {
		return names
	}
	names, err := LoadGamelist(filepath.Join(r.romsDir, system, GamelistName))
	if err != nil {
		// Missing or unreadable catalogs fall back to filenames.
		names = map[string]string{}
	}
	r.catalogs[system] = names
	return names
}

// LoadGamelist parses a gamelist file into a path-to-name map. Entries with an
// empty path or name are skipped; the first entry for a path wins.
func LoadGamelist(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list gameList
	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(list.Games))
	for _, g := range list.Games {
		p := strings.TrimSpace(g.Path)
		n := strings.TrimSpace(g.Name)
		if p == "" || n == "" {
			continue
		}
		if _, ok := names[p]; ok {
			continue
		}
		names[p] = n
	}
	return names, nil
}
