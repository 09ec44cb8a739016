package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbook/internal/shared/config"
	"eventbook/pkg/cache"
)

type fakeEventRepo struct {
	nextID       uint
	events       map[uint]*Event
	getByIDCalls int
	getAllCalls  int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uint]*Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *Event) error {
	f.nextID++
	event.ID = f.nextID
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id uint) (*Event, error) {
	f.getByIDCalls++
	event, ok := f.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id uint, updates map[string]interface{}) (*Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	if name, ok := updates["name"].(string); ok {
		event.Name = name
	}
	if venue, ok := updates["venue"].(string); ok {
		event.Venue = venue
	}
	if max, ok := updates["max_tickets"].(int); ok {
		event.MaxTickets = max
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) GetAll(ctx context.Context, query EventListQuery) ([]Event, error) {
	f.getAllCalls++
	var list []Event
	for _, event := range f.events {
		list = append(list, *event)
	}
	return list, nil
}

// fakeCache is an in-memory cache.Service; GetOrSet writes through
// synchronously so tests can observe cache hits.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	f.data = make(map[string][]byte)
	return nil
}

func (f *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := f.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := fetcher()
	if err != nil {
		return err
	}
	if err := f.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return f.Get(ctx, key, dest)
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{
			EventListTTL:   15 * time.Minute,
			EventDetailTTL: 5 * time.Minute,
		},
	}
}

func newTestService(repo Repository) Service {
	return NewService(repo, testConfig())
}

func validCreateRequest() CreateEventRequest {
	start := time.Now().Add(24 * time.Hour)
	return CreateEventRequest{
		Name:       "Go Conference",
		Venue:      "Harbor Convention Center",
		StartTime:  start,
		EndTime:    start.Add(8 * time.Hour),
		MaxTickets: 100,
	}
}

func TestNewServiceUsesConfiguredTTLs(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.EventListTTL = 2 * time.Minute
	cfg.Redis.EventDetailTTL = 30 * time.Second

	svc := NewService(newFakeEventRepo(), cfg).(*service)
	assert.Equal(t, 2*time.Minute, svc.listTTL)
	assert.Equal(t, 30*time.Second, svc.detailTTL)
}

func TestCreateEventRejectsInvalidTimeRange(t *testing.T) {
	svc := newTestService(newFakeEventRepo())

	req := validCreateRequest()
	req.EndTime = req.StartTime.Add(-time.Hour)

	_, err := svc.CreateEvent(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestCreateAndGetEvent(t *testing.T) {
	svc := newTestService(newFakeEventRepo())

	created, err := svc.CreateEvent(context.Background(), 1, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, AvailabilityAvailable, created.Availability)
	assert.Equal(t, 100, created.AvailableTickets)

	fetched, err := svc.GetEventByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)

	_, err = svc.GetEventByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetEventByIDServesRepeatReadsFromCache(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)
	svc.SetCacheService(newFakeCache())

	created, err := svc.CreateEvent(context.Background(), 1, validCreateRequest())
	require.NoError(t, err)

	first, err := svc.GetEventByID(context.Background(), created.ID)
	require.NoError(t, err)
	second, err := svc.GetEventByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.getByIDCalls)
}

func TestGetAllEventsCachesListAndInvalidatesOnMutation(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)
	svc.SetCacheService(newFakeCache())

	created, err := svc.CreateEvent(context.Background(), 1, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.GetAllEvents(context.Background(), EventListQuery{})
	require.NoError(t, err)
	_, err = svc.GetAllEvents(context.Background(), EventListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getAllCalls)

	// An event mutation drops the cached listing.
	require.NoError(t, svc.DeleteEvent(context.Background(), created.ID))

	list, err := svc.GetAllEvents(context.Background(), EventListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 2, repo.getAllCalls)
}

func TestGetAllEventsStatusFilter(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestService(repo)

	_, err := svc.CreateEvent(context.Background(), 1, validCreateRequest())
	require.NoError(t, err)

	soldOut := validCreateRequest()
	soldOut.Name = "Pop-up Supper Club"
	created, err := svc.CreateEvent(context.Background(), 1, soldOut)
	require.NoError(t, err)
	repo.events[created.ID].BookedCount = repo.events[created.ID].MaxTickets

	available, err := svc.GetAllEvents(context.Background(), EventListQuery{Status: "available"})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Go Conference", available[0].Name)

	booked, err := svc.GetAllEvents(context.Background(), EventListQuery{Status: "booked"})
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.Equal(t, "Pop-up Supper Club", booked[0].Name)
	assert.Equal(t, AvailabilitySoldOut, booked[0].Availability)

	all, err := svc.GetAllEvents(context.Background(), EventListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteEvent(t *testing.T) {
	svc := newTestService(newFakeEventRepo())

	created, err := svc.CreateEvent(context.Background(), 1, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(context.Background(), created.ID))
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), created.ID), ErrEventNotFound)
}
