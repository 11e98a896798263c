package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/steve2482/simspeedserver/internal/model"
	"github.com/steve2482/simspeedserver/internal/repository"
)

type ChannelService struct {
	channels ChannelDirectory
}

func NewChannelService(channels ChannelDirectory) *ChannelService {
	return &ChannelService{channels: channels}
}

// List returns every tracked channel ordered by internal name.
func (s *ChannelService) List(ctx context.Context) ([]model.Channel, error) {
	return s.channels.ListChannels(ctx)
}

// Lookup returns one channel by internal name.
func (s *ChannelService) Lookup(ctx context.Context, name string) (*model.Channel, error) {
	ch, err := s.channels.FindByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, name)
	}
	return ch, err
}
