// Package tracks maintains an availability catalog of the maps and custom
// tracks installed next to the server, so joining players can check whether
// a session's track is obtainable before connecting to the host.
package tracks

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Info describes one known track.
type Info struct {
	MapID    string   `json:"map_id"`
	TrackID  string   `json:"track_id"`
	Name     string   `json:"name"`
	Author   string   `json:"author"`
	IsCustom bool     `json:"is_custom"`
	FileHash string   `json:"file_hash"`
	FileSize int64    `json:"file_size"`
	Files    []string `json:"files"`
}

type trackMeta struct {
	Name   string `json:"name"`
	Author string `json:"author"`
}

// Catalog is the scanned track index. Rescans swap the whole map under the
// lock; reads only ever see a complete index.
type Catalog struct {
	mu       sync.RWMutex
	mapsPath string
	tracks   map[string]Info
}

// NewCatalog creates a catalog rooted at mapsPath and performs the initial
// scan. An empty mapsPath yields an empty catalog; the endpoints still work.
func NewCatalog(mapsPath string) *Catalog {
	c := &Catalog{
		mapsPath: mapsPath,
		tracks:   make(map[string]Info),
	}
	if err := c.Scan(); err != nil {
		slog.Warn("Track scan failed", "maps_path", mapsPath, "error", err)
	}
	return c
}

// Scan rebuilds the index from disk. Layout per map directory:
// custom/<track_id>/ holds custom track overlays, *.json files are built-in
// track definitions.
func (c *Catalog) Scan() error {
	if c.mapsPath == "" {
		return nil
	}

	entries, err := os.ReadDir(c.mapsPath)
	if err != nil {
		return fmt.Errorf("failed to read maps directory: %w", err)
	}

	tracks := make(map[string]Info)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		mapID := entry.Name()
		mapDir := filepath.Join(c.mapsPath, mapID)

		customDir := filepath.Join(mapDir, "custom")
		if customEntries, err := os.ReadDir(customDir); err == nil {
			for _, trackEntry := range customEntries {
				if !trackEntry.IsDir() {
					continue
				}
				trackID := trackEntry.Name()
				info, err := scanTrackDir(mapID, trackID, filepath.Join(customDir, trackID))
				if err != nil {
					slog.Warn("Skipping unreadable track", "map_id", mapID, "track_id", trackID, "error", err)
					continue
				}
				tracks[key(mapID, trackID)] = info
			}
		}

		builtins, err := filepath.Glob(filepath.Join(mapDir, "*.json"))
		if err != nil {
			continue
		}
		for _, file := range builtins {
			trackID := strings.TrimSuffix(filepath.Base(file), ".json")
			info, err := scanBuiltinTrack(mapID, trackID, file)
			if err != nil {
				slog.Warn("Skipping unreadable built-in track", "map_id", mapID, "track_id", trackID, "error", err)
				continue
			}
			tracks[key(mapID, trackID)] = info
		}
	}

	c.mu.Lock()
	c.tracks = tracks
	c.mu.Unlock()

	slog.Info("Track scan complete", "maps_path", c.mapsPath, "tracks", len(tracks))
	return nil
}

// Get returns the info for one track.
func (c *Catalog) Get(mapID, trackID string) (Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.tracks[key(mapID, trackID)]
	return info, ok
}

// Has reports track availability, and whether the local copy matches
// expectedHash when one is supplied.
func (c *Catalog) Has(mapID, trackID, expectedHash string) (available, hashMatch bool) {
	info, ok := c.Get(mapID, trackID)
	if !ok {
		return false, false
	}
	if expectedHash == "" {
		return true, true
	}
	return true, info.FileHash == expectedHash
}

// List returns all known tracks, optionally restricted to one map, sorted by
// map then track id.
func (c *Catalog) List(mapID string) []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Info, 0, len(c.tracks))
	for _, info := range c.tracks {
		if mapID != "" && info.MapID != mapID {
			continue
		}
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MapID != result[j].MapID {
			return result[i].MapID < result[j].MapID
		}
		return result[i].TrackID < result[j].TrackID
	})
	return result
}

func scanTrackDir(mapID, trackID, dir string) (Info, error) {
	var files []string
	var totalSize int64
	var hashLines []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		files = append(files, rel)
		totalSize += int64(len(data))
		hashLines = append(hashLines, rel+":"+hex.EncodeToString(sum[:]))
		return nil
	})
	if err != nil {
		return Info{}, err
	}

	sort.Strings(hashLines)
	overall := sha256.Sum256([]byte(strings.Join(hashLines, "\n")))

	info := Info{
		MapID:    mapID,
		TrackID:  trackID,
		Name:     trackID,
		Author:   "Unknown",
		IsCustom: true,
		FileHash: hex.EncodeToString(overall[:]),
		FileSize: totalSize,
		Files:    files,
	}

	// meta.json is optional; missing or malformed metadata keeps the defaults.
	if metaData, err := os.ReadFile(filepath.Join(dir, "meta.json")); err == nil {
		var meta trackMeta
		if err := json.Unmarshal(metaData, &meta); err == nil {
			if meta.Name != "" {
				info.Name = meta.Name
			}
			if meta.Author != "" {
				info.Author = meta.Author
			}
		}
	}

	return info, nil
}

func scanBuiltinTrack(mapID, trackID, file string) (Info, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Info{}, err
	}
	sum := sha256.Sum256(data)

	return Info{
		MapID:    mapID,
		TrackID:  trackID,
		Name:     trackID,
		Author:   "DRL",
		IsCustom: false,
		FileHash: hex.EncodeToString(sum[:]),
		FileSize: int64(len(data)),
		Files:    []string{filepath.Base(file)},
	}, nil
}

func key(mapID, trackID string) string {
	return mapID + "/" + trackID
}
