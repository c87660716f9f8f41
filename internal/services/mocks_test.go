package services_test

import (
	"context"
	"sync"

	"github.com/getmentor/profile-editor/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

// MockProfileStore is a mock implementation of services.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Load(ctx context.Context) (*models.Profile, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Profile), args.Bool(1), args.Error(2)
}

func (m *MockProfileStore) Save(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, notification models.Notification) {
	m.Called(ctx, notification)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Name() string {
	return "mock"
}

func (m *MockEventPublisher) PublishProfileSaved(ctx context.Context, event models.ProfileSavedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockAMQPChannel is a mock implementation of services.AMQPChannel
type MockAMQPChannel struct {
	mock.Mock
}

func (m *MockAMQPChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

// memoryStore is a working ProfileStore that records every save
type memoryStore struct {
	mu      sync.Mutex
	profile *models.Profile
	saves   int
}

func (s *memoryStore) Load(context.Context) (*models.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil, false, nil
	}
	p := s.profile.Clone()
	return &p, true, nil
}

func (s *memoryStore) Save(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := profile.Clone()
	s.profile = &p
	s.saves++
	return nil
}
