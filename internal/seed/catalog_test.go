package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve2482/simspeedserver/internal/model"
)

const sample = `
channels:
  - abreviatedName: iracing
    name: iRacing
    youtubeId: UCiracing
    category: sim
    favorites: 99
  - abreviatedName: rf2
    youtubeId: UCrf2
`

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, cat.Channels, 2)

	assert.Equal(t, model.Channel{Name: "iracing", DisplayName: "iRacing", YouTubeID: "UCiracing", Category: "sim"}, cat.Channels[0])
	assert.Equal(t, "rf2", cat.Channels[1].DisplayName, "display name defaults to internal name")
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "channels:\n  - youtubeId: UC1\n"},
		{"name too long", "channels:\n  - {abreviatedName: " + strings.Repeat("x", 65) + ", youtubeId: UC1}\n"},
		{"control character in name", "channels:\n  - {abreviatedName: \"a\\tb\", youtubeId: UC1}\n"},
		{"missing youtube id", "channels:\n  - abreviatedName: a\n"},
		{"duplicate", "channels:\n  - {abreviatedName: a, youtubeId: UC1}\n  - {abreviatedName: a, youtubeId: UC2}\n"},
		{"not yaml", "channels: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_KeepsNamesWithSpaces(t *testing.T) {
	cat, err := Parse([]byte("channels:\n  - {abreviatedName: \"Sim Racing, Inc\", youtubeId: UCsim}\n"))
	require.NoError(t, err)
	assert.Equal(t, "Sim Racing, Inc", cat.Channels[0].Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cat.Channels, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type recordingUpserter struct {
	names  []string
	failOn string
}

func (r *recordingUpserter) Upsert(ctx context.Context, ch model.Channel) error {
	if ch.Name == r.failOn {
		return errors.New("constraint violation")
	}
	r.names = append(r.names, ch.Name)
	return nil
}

func TestApply(t *testing.T) {
	cat, err := Parse([]byte(sample))
	require.NoError(t, err)

	dst := &recordingUpserter{}
	n, err := Apply(context.Background(), dst, cat)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"iracing", "rf2"}, dst.names)

	dst = &recordingUpserter{failOn: "rf2"}
	n, err = Apply(context.Background(), dst, cat)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}
