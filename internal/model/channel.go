package model

// Channel is a tracked broadcaster in the directory.
type Channel struct {
	Name        string `json:"abreviatedName" yaml:"abreviatedName"`
	DisplayName string `json:"name" yaml:"name"`
	YouTubeID   string `json:"youtubeId" yaml:"youtubeId"`
	Favorites   int    `json:"favorites" yaml:"favorites"`
	Category    string `json:"category,omitempty" yaml:"category"`
}

// ChannelUpcomingRequest is the body of POST /channel-upcoming.
type ChannelUpcomingRequest struct {
	ChannelName string `json:"channelName"`
}

// ChannelVideosRequest is the body of POST /channel-videos.
type ChannelVideosRequest struct {
	ChannelName   string `json:"channelName"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// FavoriteRequest is the body of POST /favorite-channel and /remove-channel.
type FavoriteRequest struct {
	Channel string `json:"channel"`
}
