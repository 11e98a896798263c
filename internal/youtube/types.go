package youtube

import (
	"bytes"
	"encoding/json"
)

// EventType is the broadcast-status filter of a search call.
type EventType string

const (
	EventLive      EventType = "live"
	EventUpcoming  EventType = "upcoming"
	EventCompleted EventType = "completed"
)

// SearchParams describes one search call scoped to a channel.
type SearchParams struct {
	ChannelID  string
	EventType  EventType
	MaxResults int    // 0 leaves the upstream default
	Order      string // e.g. "date"; empty leaves the upstream default
	PageToken  string
}

// SearchPage is one page of search results. Raw holds the body exactly as
// the upstream returned it.
type SearchPage struct {
	Raw           json.RawMessage
	VideoIDs      []string
	NextPageToken string
}

type searchResponse struct {
	Items         []searchItem `json:"items"`
	NextPageToken string       `json:"nextPageToken"`
}

type searchItem struct {
	ID itemID `json:"id"`
}

// itemID accepts both {"videoId": "..."} and a bare string.
type itemID struct {
	VideoID string
}

func (id *itemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &id.VideoID)
	}
	var obj struct {
		VideoID string `json:"videoId"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	id.VideoID = obj.VideoID
	return nil
}

// Video is the subset of a videos.list item the pipeline consumes.
type Video struct {
	ID                   string               `json:"id"`
	Snippet              Snippet              `json:"snippet"`
	LiveStreamingDetails LiveStreamingDetails `json:"liveStreamingDetails"`
}

type Snippet struct {
	Title        string     `json:"title"`
	ChannelTitle string     `json:"channelTitle"`
	ChannelID    string     `json:"channelId"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty"`
}

type Thumbnail struct {
	URL string `json:"url"`
}

// Best returns the largest available thumbnail URL.
func (t Thumbnails) Best() string {
	for _, th := range []*Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	return ""
}

type LiveStreamingDetails struct {
	ScheduledStartTime string `json:"scheduledStartTime"`
	ActualStartTime    string `json:"actualStartTime"`
}

type videosResponse struct {
	Items []Video `json:"items"`
}
