package service

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/model"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/payment"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/queue"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
)

// memStore mirrors the SQL store's conditional-update semantics in memory
// so the reconciliation flows can be exercised without a database.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	rooms    map[uint64]*model.Room
	bookings map[uint64]*model.Booking
}

func newMemStore(rooms ...*model.Room) *memStore {
	s := &memStore{rooms: map[uint64]*model.Room{}, bookings: map[uint64]*model.Booking{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *memStore) CreateBooking(_ context.Context, p repository.CreateParams) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	checkIn := p.CheckIn.UTC().Truncate(24 * time.Hour)
	checkOut := p.CheckOut.UTC().Truncate(24 * time.Hour)
	if !checkIn.Before(checkOut) {
		return nil, repository.ErrInvalidDateRange
	}
	room, ok := s.rooms[p.RoomID]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	if p.Guests == 0 || p.Guests > room.Capacity {
		return nil, repository.ErrCapacityExceeded
	}
	if !room.Bookable() {
		return nil, repository.ErrRoomNotReservable
	}
	for _, b := range s.bookings {
		if b.RoomID == p.RoomID && b.HoldsRoom() && b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut) {
			return nil, repository.ErrRoomUnavailable
		}
	}
	total := uint64(room.NightlyRateCents) * uint64(checkOut.Sub(checkIn)/(24*time.Hour))
	if total > math.MaxUint32 {
		return nil, repository.ErrInvalidDateRange
	}
	s.nextID++
	b := &model.Booking{
		ID:           s.nextID,
		GuestID:      p.GuestID,
		RoomID:       p.RoomID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Guests:       p.Guests,
		TotalCents:   uint32(total),
		Status:       model.StatusPending,
		PaymentState: model.PaymentPending,
		CreatedAt:    time.Now().UTC(),
	}
	s.bookings[b.ID] = b
	return copyBooking(b), nil
}

func (s *memStore) CancelBooking(_ context.Context, id uint64, refund repository.RefundFunc) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if !b.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, repository.ErrInvalidTransition
	}
	if refund != nil {
		cents, refunded := refund(copyBooking(b))
		b.RefundCents = cents
		if refunded {
			b.PaymentState = model.PaymentRefunded
		}
	}
	b.Status = model.StatusCancelled
	return copyBooking(b), nil
}

func (s *memStore) GetBooking(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (s *memStore) BookingByTxRef(_ context.Context, txRef string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.TxRef != nil && *b.TxRef == txRef {
			return copyBooking(b), nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *memStore) AttachPaymentRef(_ context.Context, id uint64, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.TxRef != nil {
		return repository.ErrAlreadyAttached
	}
	b.TxRef = &txRef
	return nil
}

func (s *memStore) SupersedePaymentRef(_ context.Context, id uint64, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != model.StatusPending || b.PaymentState != model.PaymentFailed {
		return repository.ErrInvalidTransition
	}
	b.TxRef = &txRef
	b.PaymentState = model.PaymentPending
	return nil
}

func (s *memStore) ConfirmByTxRef(_ context.Context, txRef string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.TxRef == nil || *b.TxRef != txRef {
			continue
		}
		switch b.Status {
		case model.StatusPending:
			b.Status = model.StatusConfirmed
			b.PaymentState = model.PaymentCompleted
			return true, nil
		case model.StatusConfirmed, model.StatusCompleted:
			return false, nil
		default:
			return false, repository.ErrInvalidTransition
		}
	}
	return false, repository.ErrBookingNotFound
}

func (s *memStore) MarkPaymentFailed(_ context.Context, id uint64, needsReview bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.PaymentState = model.PaymentFailed
	b.NeedsReview = b.NeedsReview || needsReview
	return nil
}

func (s *memStore) CompleteBooking(_ context.Context, id uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != model.StatusConfirmed || now.Before(b.CheckOut) {
		return repository.ErrInvalidTransition
	}
	b.Status = model.StatusCompleted
	return nil
}

func (s *memStore) ListBookingsByGuest(_ context.Context, guestID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.GuestID == guestID {
			out = append(out, *copyBooking(b))
		}
	}
	return out, nil
}

func (s *memStore) ListAllBookings(_ context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		out = append(out, *copyBooking(b))
	}
	return out, nil
}

func (s *memStore) ListExpiredPending(_ context.Context, cutoff time.Time) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.Status == model.StatusPending && b.PaymentState != model.PaymentCompleted && b.CreatedAt.Before(cutoff) {
			out = append(out, *copyBooking(b))
		}
	}
	return out, nil
}

func (s *memStore) ExpireBooking(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != model.StatusPending {
		return repository.ErrInvalidTransition
	}
	b.Status = model.StatusCancelled
	return nil
}

func (s *memStore) GetRoom(_ context.Context, id uint64) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func copyBooking(b *model.Booking) *model.Booking {
	cp := *b
	if b.TxRef != nil {
		ref := *b.TxRef
		cp.TxRef = &ref
	}
	return &cp
}

// fakeGateway scripts gateway behavior per test.
type fakeGateway struct {
	mu          sync.Mutex
	createErr   error
	createCalls int
	verifyErr   error
	verify      map[string]*payment.VerifyResult
}

func (g *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &payment.Session{TxRef: req.TxRef, CheckoutURL: "https://checkout.test/" + req.TxRef}, nil
}

func (g *fakeGateway) Verify(_ context.Context, txRef string) (*payment.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if res, ok := g.verify[txRef]; ok {
		return res, nil
	}
	return nil, payment.ErrInvalidReference
}

func (g *fakeGateway) script(txRef string, res *payment.VerifyResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verify == nil {
		g.verify = map[string]*payment.VerifyResult{}
	}
	g.verify[txRef] = res
}

func testRoom() *model.Room {
	return &model.Room{
		ID:                 1,
		RoomNumber:         "204",
		RoomType:           "double",
		NightlyRateCents:   250_000,
		Capacity:           2,
		HousekeepingStatus: model.HousekeepingClean,
		Reservable:         true,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestReconciler(store Store, gw payment.Client) *Reconciler {
	return NewReconciler(store, gw, Config{
		Currency:    "ETB",
		ReturnURL:   "https://hotel.test/payments/return",
		GracePeriod: 30 * time.Minute,
		FeePercent:  10,
	}, quietLogger())
}

func stay(days int) (time.Time, time.Time) {
	in := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return in, in.AddDate(0, 0, days)
}

func initParams(guestID uint64, nights int) InitiateParams {
	in, out := stay(nights)
	return InitiateParams{
		GuestID:  guestID,
		RoomID:   1,
		CheckIn:  in,
		CheckOut: out,
		Guests:   2,
		Email:    "guest@example.com",
	}
}

func TestInitiateBooking(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, checkoutURL, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, model.PaymentPending, b.PaymentState)
	assert.Equal(t, uint32(500_000), b.TotalCents)
	require.NotNil(t, b.TxRef)
	assert.True(t, strings.HasPrefix(*b.TxRef, "BK-1-"))
	assert.Equal(t, "https://checkout.test/"+*b.TxRef, checkoutURL)

	// The pending booking holds the room against overlapping requests.
	_, _, err = svc.InitiateBooking(context.Background(), initParams(8, 1))
	assert.ErrorIs(t, err, repository.ErrRoomUnavailable)
}

func TestInitiateBookingRollsBackOnSessionFailure(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{createErr: payment.ErrGatewayUnreachable}
	svc := newTestReconciler(store, gw)

	_, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	assert.ErrorIs(t, err, payment.ErrGatewayUnreachable)

	// The failed attempt must not leave the room held.
	gw.createErr = nil
	_, _, err = svc.InitiateBooking(context.Background(), initParams(8, 2))
	assert.NoError(t, err)
}

func TestVerifyAndConfirm(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	var published []queue.BookingConfirmedEvent
	svc.Publish = func(_ context.Context, ev queue.BookingConfirmedEvent) error {
		published = append(published, ev)
		return nil
	}

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.script(*b.TxRef, &payment.VerifyResult{Success: true, AmountCents: b.TotalCents, RawStatus: "success"})

	got, err := svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Equal(t, model.PaymentCompleted, got.PaymentState)
	require.Len(t, published, 1)
	assert.Equal(t, b.ID, published[0].BookingID)
	assert.Equal(t, "204", published[0].RoomNumber)

	// Redelivery (webhook after redirect, or vice versa) is a no-op.
	again, err := svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, again.Status)
	assert.Len(t, published, 1)
}

func TestVerifyAndConfirmDeclined(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.script(*b.TxRef, &payment.VerifyResult{Success: false, AmountCents: b.TotalCents, RawStatus: "failed"})

	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	got, _ := store.GetBooking(context.Background(), b.ID)
	assert.Equal(t, model.StatusPending, got.Status) // room stays held for retry
	assert.Equal(t, model.PaymentFailed, got.PaymentState)
	assert.False(t, got.NeedsReview)
}

func TestVerifyAndConfirmAmountMismatch(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.script(*b.TxRef, &payment.VerifyResult{Success: true, AmountCents: b.TotalCents - 1, RawStatus: "success"})

	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	assert.ErrorIs(t, err, ErrAmountMismatch)

	got, _ := store.GetBooking(context.Background(), b.ID)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, model.PaymentFailed, got.PaymentState)
	assert.True(t, got.NeedsReview)
}

func TestVerifyAndConfirmNotSettled(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.script(*b.TxRef, &payment.VerifyResult{Success: false, AmountCents: 0, RawStatus: "pending"})

	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	assert.ErrorIs(t, err, ErrPaymentNotSettled)

	// No state change: the guest simply has not finished checkout.
	got, _ := store.GetBooking(context.Background(), b.ID)
	assert.Equal(t, model.PaymentPending, got.PaymentState)
}

func TestVerifyAndConfirmGatewayDown(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.verifyErr = payment.ErrGatewayUnreachable

	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	assert.ErrorIs(t, err, payment.ErrGatewayUnreachable)

	got, _ := store.GetBooking(context.Background(), b.ID)
	assert.Equal(t, model.PaymentPending, got.PaymentState)
}

func TestPayAgain(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	firstRef := *b.TxRef

	// A fresh session is only allowed after a failed attempt.
	_, err = svc.PayAgain(context.Background(), b.ID, Actor{GuestID: 7}, "guest@example.com", "", "")
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	gw.script(firstRef, &payment.VerifyResult{Success: false, RawStatus: "failed"})
	_, err = svc.VerifyAndConfirm(context.Background(), firstRef)
	require.ErrorIs(t, err, ErrPaymentDeclined)

	_, err = svc.PayAgain(context.Background(), b.ID, Actor{GuestID: 99}, "other@example.com", "", "")
	assert.ErrorIs(t, err, repository.ErrForbidden)

	checkoutURL, err := svc.PayAgain(context.Background(), b.ID, Actor{GuestID: 7}, "guest@example.com", "", "")
	require.NoError(t, err)

	got, _ := store.GetBooking(context.Background(), b.ID)
	require.NotNil(t, got.TxRef)
	assert.NotEqual(t, firstRef, *got.TxRef)
	assert.Equal(t, "https://checkout.test/"+*got.TxRef, checkoutURL)
	assert.Equal(t, model.PaymentPending, got.PaymentState)

	// The superseded reference can never confirm the booking.
	_, err = svc.VerifyAndConfirm(context.Background(), firstRef)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestCancelWithRefund(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.script(*b.TxRef, &payment.VerifyResult{Success: true, AmountCents: b.TotalCents, RawStatus: "success"})
	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), b.ID, Actor{GuestID: 99})
	assert.ErrorIs(t, err, repository.ErrForbidden)

	got, err := svc.Cancel(context.Background(), b.ID, Actor{GuestID: 7})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.Equal(t, model.PaymentRefunded, got.PaymentState)
	assert.Equal(t, uint32(450_000), got.RefundCents) // 10% fee on 500000

	_, err = svc.Cancel(context.Background(), b.ID, Actor{GuestID: 7})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestCancelRefundLargeStay(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	// 400 nights at 250000 cents totals 100000000; the 10% fee refund of
	// 90000000 exceeds what 32-bit intermediate arithmetic can carry.
	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 400))
	require.NoError(t, err)
	require.Equal(t, uint32(100_000_000), b.TotalCents)

	gw.script(*b.TxRef, &payment.VerifyResult{Success: true, AmountCents: b.TotalCents, RawStatus: "success"})
	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	require.NoError(t, err)

	got, err := svc.Cancel(context.Background(), b.ID, Actor{GuestID: 7})
	require.NoError(t, err)
	assert.Equal(t, uint32(90_000_000), got.RefundCents)
	assert.Equal(t, model.PaymentRefunded, got.PaymentState)
}

func TestConcurrentOverlappingCreates(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(guestID uint64) {
			defer wg.Done()
			_, _, err := svc.InitiateBooking(context.Background(), initParams(guestID, 2))
			errs <- err
		}(uint64(10 + i))
	}
	wg.Wait()
	close(errs)

	succeeded, unavailable := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrRoomUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, unavailable)
}

func TestCancelUnpaidNoRefund(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)

	got, err := svc.Cancel(context.Background(), b.ID, Actor{GuestID: 7, Staff: false})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.Equal(t, uint32(0), got.RefundCents)
	assert.Equal(t, model.PaymentPending, got.PaymentState)
}

func TestSweepExpired(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)

	// Age the booking past the grace period.
	store.mu.Lock()
	store.bookings[b.ID].CreatedAt = time.Now().UTC().Add(-time.Hour)
	store.mu.Unlock()

	svc.sweepExpired(context.Background())

	got, _ := store.GetBooking(context.Background(), b.ID)
	assert.Equal(t, model.StatusCancelled, got.Status)

	// The room is free for new bookings again.
	_, _, err = svc.InitiateBooking(context.Background(), initParams(8, 2))
	assert.NoError(t, err)
}

func TestSweepLeavesConfirmedAlone(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.script(*b.TxRef, &payment.VerifyResult{Success: true, AmountCents: b.TotalCents, RawStatus: "success"})
	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	require.NoError(t, err)

	store.mu.Lock()
	store.bookings[b.ID].CreatedAt = time.Now().UTC().Add(-time.Hour)
	store.mu.Unlock()

	svc.sweepExpired(context.Background())

	got, _ := store.GetBooking(context.Background(), b.ID)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}

func TestCompleteAfterCheckout(t *testing.T) {
	store := newMemStore(testRoom())
	gw := &fakeGateway{}
	svc := newTestReconciler(store, gw)

	b, _, err := svc.InitiateBooking(context.Background(), initParams(7, 2))
	require.NoError(t, err)
	gw.script(*b.TxRef, &payment.VerifyResult{Success: true, AmountCents: b.TotalCents, RawStatus: "success"})
	_, err = svc.VerifyAndConfirm(context.Background(), *b.TxRef)
	require.NoError(t, err)

	// Completion requires check-out to have passed.
	store.mu.Lock()
	store.bookings[b.ID].CheckIn = time.Now().UTC().AddDate(0, 0, -3).Truncate(24 * time.Hour)
	store.bookings[b.ID].CheckOut = time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	store.mu.Unlock()

	got, err := svc.Complete(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, model.PaymentCompleted, got.PaymentState)

	_, err = svc.Cancel(context.Background(), b.ID, Actor{Staff: true})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}
