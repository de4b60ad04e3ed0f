package notification

import (
	"context"
	"fmt"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/query"
)

type NotificationService interface {
	CreateChannel(ctx context.Context, channel *Channel) error
	GetChannel(ctx context.Context, id string) (*Channel, error)
	ListChannels(ctx context.Context, opts ListOptions) (*query.NotificationChannelsResult, error)
	UpdateChannel(ctx context.Context, channel *Channel) error
	DeleteChannel(ctx context.Context, id string) error
}

type NotificationServiceImpl struct {
	repo    ChannelRepository
	backend backend.Service
}

func NewNotificationService(repo ChannelRepository, svc backend.Service) NotificationService {
	return &NotificationServiceImpl{
		repo:    repo,
		backend: svc,
	}
}

func (s *NotificationServiceImpl) CreateChannel(ctx context.Context, channel *Channel) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	return s.repo.Create(ctx, channel)
}

func (s *NotificationServiceImpl) GetChannel(ctx context.Context, id string) (*Channel, error) {
	return s.repo.GetByID(ctx, id)
}

// ListChannels reads through the backend listing so both storage flavors
// serve the same paged, filtered view.
func (s *NotificationServiceImpl) ListChannels(ctx context.Context, opts ListOptions) (*query.NotificationChannelsResult, error) {
	q := query.NewNotificationChannelsQuery(s.backend).
		WithTitle(opts.Title).
		WithType(opts.Type).
		WithSort(opts.Sort).
		WithSize(opts.Size).
		WithPage(opts.Page)
	return q.Query(ctx)
}

func (s *NotificationServiceImpl) UpdateChannel(ctx context.Context, channel *Channel) error {
	if err := validateChannel(channel); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, channel.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("notification channel %s not found", channel.ID)
	}
	channel.Created = existing.Created

	return s.repo.Update(ctx, channel)
}

func (s *NotificationServiceImpl) DeleteChannel(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateChannel(channel *Channel) error {
	if channel.Title == "" {
		return fmt.Errorf("channel title is required")
	}
	if channel.Destination == "" {
		return fmt.Errorf("channel destination is required")
	}
	switch channel.Type {
	case ChannelTypeWebhook, ChannelTypeEmail:
		return nil
	default:
		return fmt.Errorf("unknown channel type %q", channel.Type)
	}
}
