package reservations

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbook/internal/shared/config"
)

// fakeRepo is an in-memory Repository with the same capacity semantics as the
// SQL implementation: the capacity gate and the seat sequence move together
// under one lock.
type fakeRepo struct {
	mu sync.Mutex

	maxTickets   map[uint]int
	bookedCount  map[uint]int
	seatSequence map[uint]int

	nextReservationID uint
	nextTicketID      uint
	reservations      map[uint]*Reservation
	tickets           map[uint][]*Ticket // keyed by reservation id

	// conflicts, when positive, makes the next create attempts fail with
	// ErrTxConflict before succeeding.
	conflicts int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		maxTickets:   make(map[uint]int),
		bookedCount:  make(map[uint]int),
		seatSequence: make(map[uint]int),
		reservations: make(map[uint]*Reservation),
		tickets:      make(map[uint][]*Ticket),
	}
}

func (f *fakeRepo) addEvent(id uint, maxTickets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxTickets[id] = maxTickets
}

func (f *fakeRepo) CreateReservationWithTicket(ctx context.Context, userID, eventID uint, bookedAt time.Time) (*Reservation, *Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflicts > 0 {
		f.conflicts--
		return nil, nil, ErrTxConflict
	}

	max, ok := f.maxTickets[eventID]
	if !ok {
		return nil, nil, ErrEventNotFound
	}
	if f.bookedCount[eventID] >= max {
		return nil, nil, ErrEventSoldOut
	}

	f.bookedCount[eventID]++
	f.seatSequence[eventID]++
	seq := f.seatSequence[eventID]

	f.nextReservationID++
	reservation := &Reservation{
		ID:        f.nextReservationID,
		UserID:    userID,
		EventID:   eventID,
		Status:    StatusConfirmed,
		CreatedAt: bookedAt,
	}
	f.reservations[reservation.ID] = reservation

	f.nextTicketID++
	ticket := &Ticket{
		ID:            f.nextTicketID,
		ReservationID: reservation.ID,
		EventID:       eventID,
		UserID:        userID,
		SeatNumber:    SeatLabel(bookedAt, userID, seq),
		Status:        TicketBooked,
	}
	f.tickets[reservation.ID] = append(f.tickets[reservation.ID], ticket)

	resCopy := *reservation
	ticketCopy := *ticket
	return &resCopy, &ticketCopy, nil
}

func (f *fakeRepo) CancelReservation(ctx context.Context, reservationID uint, cancelledAt time.Time) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[reservationID]
	if !ok {
		return nil, ErrReservationNotFound
	}
	if reservation.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	reservation.Status = StatusCancelled
	reservation.CancelledAt = &cancelledAt

	released := 0
	for _, ticket := range f.tickets[reservationID] {
		if ticket.Status == TicketBooked {
			ticket.Status = TicketCancelled
			released++
		}
	}
	f.bookedCount[reservation.EventID] -= released

	result := *reservation
	for _, ticket := range f.tickets[reservationID] {
		result.Tickets = append(result.Tickets, *ticket)
	}
	return &result, nil
}

func (f *fakeRepo) GetReservationByID(ctx context.Context, id uint) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}

	result := *reservation
	for _, ticket := range f.tickets[id] {
		result.Tickets = append(result.Tickets, *ticket)
	}
	return &result, nil
}

func (f *fakeRepo) GetUserReservations(ctx context.Context, userID uint) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var list []Reservation
	for _, reservation := range f.reservations {
		if reservation.UserID != userID {
			continue
		}
		result := *reservation
		for _, ticket := range f.tickets[reservation.ID] {
			result.Tickets = append(result.Tickets, *ticket)
		}
		list = append(list, result)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			MaxRetries:   3,
			RetryBackoff: time.Millisecond,
		},
	}
}

func newTestService(repo Repository) *service {
	return NewService(repo, testConfig()).(*service)
}

func TestReserveIssuesSeatFromSequence(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 10)

	svc := newTestService(repo)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }

	// Three other bookings consume the first three sequence values.
	for _, other := range []uint{2, 3, 4} {
		_, err := svc.Reserve(context.Background(), other, CreateReservationRequest{EventID: 1})
		require.NoError(t, err)
	}

	detail, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)

	assert.Equal(t, "20250101-7-4", detail.Ticket.SeatNumber)
	assert.Equal(t, string(StatusConfirmed), detail.Reservation.Status)
	assert.Equal(t, string(TicketBooked), detail.Ticket.Status)
}

func TestReserveEventNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Reserve(context.Background(), 1, CreateReservationRequest{EventID: 99})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestReserveSoldOut(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 1)
	svc := newTestService(repo)

	_, err := svc.Reserve(context.Background(), 1, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), 2, CreateReservationRequest{EventID: 1})
	assert.ErrorIs(t, err, ErrEventSoldOut)
}

func TestReserveRetriesOnConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 5)
	repo.conflicts = 2

	svc := newTestService(repo)

	detail, err := svc.Reserve(context.Background(), 1, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, detail.Ticket.SeatNumber)
}

func TestReserveGivesUpAfterMaxRetries(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 5)
	repo.conflicts = 10

	svc := newTestService(repo)

	_, err := svc.Reserve(context.Background(), 1, CreateReservationRequest{EventID: 1})
	assert.ErrorIs(t, err, ErrTxConflict)
}

func TestReserveTreatsZeroConfiguredRetriesAsOneAttempt(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 1)

	cfg := testConfig()
	cfg.Booking.MaxRetries = 0
	svc := NewService(repo, cfg).(*service)

	detail, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, detail.Ticket.SeatNumber)
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	const capacity = 10
	const contenders = 50

	repo := newFakeRepo()
	repo.addEvent(1, capacity)
	svc := newTestService(repo)

	var wg sync.WaitGroup
	results := make(chan *ReservationDetail, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			detail, err := svc.Reserve(context.Background(), userID, CreateReservationRequest{EventID: 1})
			if err == nil {
				results <- detail
			} else {
				assert.ErrorIs(t, err, ErrEventSoldOut)
			}
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	seats := make(map[string]bool)
	succeeded := 0
	for detail := range results {
		succeeded++
		assert.False(t, seats[detail.Ticket.SeatNumber], "seat %s issued twice", detail.Ticket.SeatNumber)
		seats[detail.Ticket.SeatNumber] = true
	}

	assert.Equal(t, capacity, succeeded)
}

func TestCancelReleasesCapacity(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 1)
	svc := newTestService(repo)

	detail, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)

	// Sold out while the reservation is live.
	_, err = svc.Reserve(context.Background(), 8, CreateReservationRequest{EventID: 1})
	require.ErrorIs(t, err, ErrEventSoldOut)

	cancelled, err := svc.Cancel(context.Background(), 7, detail.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCancelled), cancelled.Status)
	for _, ticket := range cancelled.Tickets {
		assert.Equal(t, string(TicketCancelled), ticket.Status)
	}

	// The freed seat can be rebooked, and the label never repeats.
	next, err := svc.Reserve(context.Background(), 8, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)
	assert.NotEqual(t, detail.Ticket.SeatNumber, next.Ticket.SeatNumber)
}

func TestCancelOnlyFlipsTicketsOfTheCancelledReservation(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 5)
	svc := newTestService(repo)

	first, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)
	second, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 7, first.Reservation.ID)
	require.NoError(t, err)

	// The user's other reservation for the same event keeps its ticket.
	kept, err := repo.GetReservationByID(context.Background(), second.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, kept.Status)
	require.Len(t, kept.Tickets, 1)
	assert.Equal(t, TicketBooked, kept.Tickets[0].Status)

	// Exactly one seat was released.
	repo.mu.Lock()
	booked := repo.bookedCount[1]
	repo.mu.Unlock()
	assert.Equal(t, 1, booked)
}

func TestCancelIsTerminal(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 2)
	svc := newTestService(repo)

	detail, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 7, detail.Reservation.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 7, detail.Reservation.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelRejectsOtherUsersWithoutMutation(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 2)
	svc := newTestService(repo)

	detail, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 8, detail.Reservation.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Still intact for the owner.
	current, err := repo.GetReservationByID(context.Background(), detail.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, current.Status)
}

func TestCancelNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Cancel(context.Background(), 7, 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestListMineReturnsOwnReservationsOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 10)
	svc := newTestService(repo)

	mine, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)
	_, err = svc.Reserve(context.Background(), 8, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)

	list, err := svc.ListMine(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, list, 1)
	assert.Equal(t, mine.Reservation.ID, list[0].ID)
	require.Len(t, list[0].Tickets, 1)
	assert.Equal(t, mine.Ticket.SeatNumber, list[0].Tickets[0].SeatNumber)

	// Reading is idempotent.
	again, err := svc.ListMine(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, list, again)
}

func TestListMineIncludesCancelled(t *testing.T) {
	repo := newFakeRepo()
	repo.addEvent(1, 10)
	svc := newTestService(repo)

	detail, err := svc.Reserve(context.Background(), 7, CreateReservationRequest{EventID: 1})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), 7, detail.Reservation.ID)
	require.NoError(t, err)

	list, err := svc.ListMine(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string(StatusCancelled), list[0].Status)
}
