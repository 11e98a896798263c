package model

import "time"

// BroadcastStub references one video found by a channel search.
type BroadcastStub struct {
	VideoID   string
	ChannelID string
}

// BroadcastDetail is the normalized record returned by the upcoming endpoints.
type BroadcastDetail struct {
	ChannelTitle string    `json:"channelTitle"`
	Title        string    `json:"title"`
	Thumbnail    string    `json:"thumbnail"`
	Date         string    `json:"date"`
	VideoID      string    `json:"videoId"`
	StartTime    time.Time `json:"-"`
}
