package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/steve2482/simspeedserver/internal/metrics"
	"github.com/steve2482/simspeedserver/internal/model"
	"github.com/steve2482/simspeedserver/internal/repository"
	"github.com/steve2482/simspeedserver/internal/youtube"
)

const (
	// BulkUpcomingLimit bounds GET /upcoming.
	BulkUpcomingLimit = 8
	// ChannelUpcomingLimit bounds POST /channel-upcoming.
	ChannelUpcomingLimit = 4

	upcomingSearchSize = 50
	videosPageSize     = 12
)

// ChannelDirectory resolves the channels an aggregation runs over.
type ChannelDirectory interface {
	ListChannels(ctx context.Context) ([]model.Channel, error)
	FindByName(ctx context.Context, name string) (*model.Channel, error)
}

// VideoSource is the upstream search and detail API.
type VideoSource interface {
	Search(ctx context.Context, p youtube.SearchParams) (*youtube.SearchPage, error)
	Video(ctx context.Context, videoID string) (*youtube.Video, error)
}

// BroadcastService aggregates live and upcoming broadcasts across the
// channel directory. Every fan-out is all-or-nothing: the first failed
// upstream call fails the whole request and no partial result is returned.
type BroadcastService struct {
	channels ChannelDirectory
	source   VideoSource
	logger   zerolog.Logger
	now      func() time.Time
}

func NewBroadcastService(channels ChannelDirectory, source VideoSource, logger zerolog.Logger) *BroadcastService {
	return &BroadcastService{
		channels: channels,
		source:   source,
		logger:   logger.With().Str("component", "broadcasts").Logger(),
		now:      time.Now,
	}
}

// WithClock replaces the wall clock used by the future-only filter.
func (s *BroadcastService) WithClock(now func() time.Time) *BroadcastService {
	s.now = now
	return s
}

// Live returns one raw search body per tracked channel, in directory order.
func (s *BroadcastService) Live(ctx context.Context) ([]json.RawMessage, error) {
	channels, err := s.channels.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	pages, err := s.searchAll(ctx, channels, youtube.SearchParams{EventType: youtube.EventLive})
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, len(pages))
	for i, p := range pages {
		out[i] = p.Raw
	}
	return out, nil
}

// Upcoming returns the next scheduled broadcasts across every channel.
func (s *BroadcastService) Upcoming(ctx context.Context) ([]model.BroadcastDetail, error) {
	channels, err := s.channels.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return s.upcoming(ctx, channels, BulkUpcomingLimit)
}

// ChannelUpcoming returns the next scheduled broadcasts of one channel.
// An unknown channel fails with ErrChannelNotFound before any upstream call.
func (s *BroadcastService) ChannelUpcoming(ctx context.Context, channelName string) ([]model.BroadcastDetail, error) {
	ch, err := s.resolve(ctx, channelName)
	if err != nil {
		return nil, err
	}
	return s.upcoming(ctx, []model.Channel{*ch}, ChannelUpcomingLimit)
}

// ChannelVideos returns one page of a channel's completed broadcasts,
// newest first, exactly as the upstream returned it.
func (s *BroadcastService) ChannelVideos(ctx context.Context, channelName, pageToken string) (json.RawMessage, error) {
	ch, err := s.resolve(ctx, channelName)
	if err != nil {
		return nil, err
	}

	page, err := s.source.Search(ctx, youtube.SearchParams{
		ChannelID:  ch.YouTubeID,
		EventType:  youtube.EventCompleted,
		MaxResults: videosPageSize,
		Order:      "date",
		PageToken:  pageToken,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("channel", ch.Name).Msg("channel videos search failed")
		return nil, err
	}
	return page.Raw, nil
}

func (s *BroadcastService) resolve(ctx context.Context, channelName string) (*model.Channel, error) {
	ch, err := s.channels.FindByName(ctx, channelName)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelName)
	}
	if err != nil {
		return nil, fmt.Errorf("find channel: %w", err)
	}
	return ch, nil
}

func (s *BroadcastService) upcoming(ctx context.Context, channels []model.Channel, limit int) ([]model.BroadcastDetail, error) {
	pages, err := s.searchAll(ctx, channels, youtube.SearchParams{
		EventType:  youtube.EventUpcoming,
		MaxResults: upcomingSearchSize,
	})
	if err != nil {
		return nil, err
	}

	var stubs []model.BroadcastStub
	for i, p := range pages {
		for _, id := range p.VideoIDs {
			stubs = append(stubs, model.BroadcastStub{VideoID: id, ChannelID: channels[i].YouTubeID})
		}
	}

	details, err := s.fetchDetails(ctx, stubs)
	if err != nil {
		return nil, err
	}

	return SelectUpcoming(details, s.now(), limit), nil
}

// searchAll issues one search per channel concurrently and returns the
// pages in channel order.
func (s *BroadcastService) searchAll(ctx context.Context, channels []model.Channel, base youtube.SearchParams) ([]*youtube.SearchPage, error) {
	metrics.AggregationSize.WithLabelValues("search").Observe(float64(len(channels)))

	pages := make([]*youtube.SearchPage, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		g.Go(func() error {
			p := base
			p.ChannelID = ch.YouTubeID
			page, err := s.source.Search(gctx, p)
			if err != nil {
				s.logger.Error().Err(err).
					Str("channel", ch.Name).
					Str("event_type", string(base.EventType)).
					Msg("channel search failed")
				return fmt.Errorf("search %s: %w", ch.Name, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// fetchDetails resolves every stub concurrently. Slots for videos that
// vanished upstream or carry no start time stay nil and are skipped.
func (s *BroadcastService) fetchDetails(ctx context.Context, stubs []model.BroadcastStub) ([]model.BroadcastDetail, error) {
	metrics.AggregationSize.WithLabelValues("detail").Observe(float64(len(stubs)))

	slots := make([]*model.BroadcastDetail, len(stubs))
	g, gctx := errgroup.WithContext(ctx)
	for i, stub := range stubs {
		g.Go(func() error {
			v, err := s.source.Video(gctx, stub.VideoID)
			if errors.Is(err, youtube.ErrVideoNotFound) {
				s.logger.Debug().Str("video", stub.VideoID).Msg("video disappeared before detail fetch")
				return nil
			}
			if err != nil {
				s.logger.Error().Err(err).Str("video", stub.VideoID).Msg("video detail failed")
				return fmt.Errorf("video %s: %w", stub.VideoID, err)
			}
			if d, ok := NormalizeVideo(v); ok {
				slots[i] = &d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details := make([]model.BroadcastDetail, 0, len(slots))
	for _, d := range slots {
		if d != nil {
			details = append(details, *d)
		}
	}
	return details, nil
}

// NormalizeVideo converts a detail response into a BroadcastDetail. The
// start time is the scheduled start, or the actual start when no schedule
// is published. ok is false when neither parses.
func NormalizeVideo(v *youtube.Video) (model.BroadcastDetail, bool) {
	start, ok := parseStart(v.LiveStreamingDetails.ScheduledStartTime)
	if !ok {
		start, ok = parseStart(v.LiveStreamingDetails.ActualStartTime)
	}
	if !ok {
		return model.BroadcastDetail{}, false
	}

	return model.BroadcastDetail{
		ChannelTitle: v.Snippet.ChannelTitle,
		Title:        v.Snippet.Title,
		Thumbnail:    v.Snippet.Thumbnails.Best(),
		Date:         start.UTC().Format(time.RFC3339),
		VideoID:      v.ID,
		StartTime:    start,
	}, true
}

func parseStart(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SelectUpcoming stable-sorts details by start time, drops anything not
// strictly after now, and keeps at most limit entries. The input slice is
// reordered in place.
func SelectUpcoming(details []model.BroadcastDetail, now time.Time, limit int) []model.BroadcastDetail {
	slices.SortStableFunc(details, func(a, b model.BroadcastDetail) int {
		return a.StartTime.Compare(b.StartTime)
	})

	out := make([]model.BroadcastDetail, 0, min(limit, len(details)))
	for _, d := range details {
		if len(out) == limit {
			break
		}
		if d.StartTime.After(now) {
			out = append(out, d)
		}
	}
	return out
}
