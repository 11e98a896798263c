// Package seed loads the channel directory from a YAML catalog.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steve2482/simspeedserver/internal/middleware"
	"github.com/steve2482/simspeedserver/internal/model"
)

// Catalog is the on-disk channel list.
type Catalog struct {
	Channels []model.Channel `yaml:"channels"`
}

// Upserter writes one channel into the directory.
type Upserter interface {
	Upsert(ctx context.Context, ch model.Channel) error
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a catalog and checks that every entry has a unique
// internal name and a provider channel id. Names are held to the same rule
// the HTTP endpoints apply, so every seeded channel stays addressable.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(cat.Channels))
	for i := range cat.Channels {
		ch := &cat.Channels[i]
		name, errMsg := middleware.ValidateChannelName(ch.Name)
		if errMsg != "" {
			return nil, fmt.Errorf("channel %d: abreviatedName: %s", i, errMsg)
		}
		ch.Name = name
		ch.YouTubeID = strings.TrimSpace(ch.YouTubeID)
		if ch.YouTubeID == "" {
			return nil, fmt.Errorf("channel %q: youtubeId is required", ch.Name)
		}
		if seen[ch.Name] {
			return nil, fmt.Errorf("channel %q: duplicate abreviatedName", ch.Name)
		}
		seen[ch.Name] = true
		if ch.DisplayName == "" {
			ch.DisplayName = ch.Name
		}
		// Counters are derived from user favorites, never seeded.
		ch.Favorites = 0
	}
	return &cat, nil
}

// Apply upserts every catalog channel and returns how many were written.
func Apply(ctx context.Context, dst Upserter, cat *Catalog) (int, error) {
	for i, ch := range cat.Channels {
		if err := dst.Upsert(ctx, ch); err != nil {
			return i, fmt.Errorf("upsert %q: %w", ch.Name, err)
		}
	}
	return len(cat.Channels), nil
}
