package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/steve2482/simspeedserver/internal/metrics"
	"github.com/steve2482/simspeedserver/internal/repository"
)

// FavoriteStore persists favorites. Add and Remove must update the user's
// list and the channel counter atomically.
type FavoriteStore interface {
	Add(ctx context.Context, userID, channelName string) error
	Remove(ctx context.Context, userID, channelName string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]string, error)
}

type FavoriteService struct {
	store  FavoriteStore
	logger zerolog.Logger
}

func NewFavoriteService(store FavoriteStore, logger zerolog.Logger) *FavoriteService {
	return &FavoriteService{store: store, logger: logger.With().Str("component", "favorites").Logger()}
}

// AddFavorite records channelName as a favorite of userID and bumps the
// channel's counter by one. Favoriting the same channel twice records it twice.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, channelName string) error {
	err := s.store.Add(ctx, userID, channelName)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, channelName)
	}
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	metrics.FavoriteToggles.WithLabelValues("add").Inc()
	return nil
}

// RemoveFavorite drops one occurrence of channelName from userID's
// favorites and lowers the counter by one. A channel the user never
// favorited is left alone.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, channelName string) error {
	removed, err := s.store.Remove(ctx, userID, channelName)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, channelName)
	}
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if !removed {
		s.logger.Debug().Str("user", userID).Str("channel", channelName).Msg("remove of non-favorite channel ignored")
		return nil
	}
	metrics.FavoriteToggles.WithLabelValues("remove").Inc()
	return nil
}

// Favorites lists userID's favorite channel names in insertion order.
func (s *FavoriteService) Favorites(ctx context.Context, userID string) ([]string, error) {
	return s.store.ListByUser(ctx, userID)
}
