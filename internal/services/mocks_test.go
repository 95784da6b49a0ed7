package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"saferides-driver/internal/models"
	"saferides-driver/internal/repositories/interfaces"
	"saferides-driver/pkg/identity"
	"saferides-driver/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

// mockRideRepository is an in-memory RideRepository whose AcceptRide applies
// the same conditional-write semantics as the store transaction.
type mockRideRepository struct {
	mu    sync.Mutex
	rides map[string]*models.Ride

	subs    map[int]chan []*models.Ride
	nextSub int

	rideSubs    map[int]rideSub
	nextRideSub int

	// Counters for verification
	AcceptCallCount int32
	ListenerCount   int32

	// Error injection
	AcceptError   error
	StartError    error
	CompleteError error
	GetError      error
}

type rideSub struct {
	rideID string
	ch     chan *models.Ride
}

func newMockRideRepository() *mockRideRepository {
	return &mockRideRepository{
		rides:    make(map[string]*models.Ride),
		subs:     make(map[int]chan []*models.Ride),
		rideSubs: make(map[int]rideSub),
	}
}

func (m *mockRideRepository) addRide(ride *models.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride.UpdateTime.IsZero() {
		ride.UpdateTime = time.Now()
	}
	m.rides[ride.ID] = ride
}

func (m *mockRideRepository) ride(id string) *models.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride, ok := m.rides[id]; ok {
		clone := *ride
		return &clone
	}
	return nil
}

// publishRequested pushes the current requested rides to every open
// candidate subscription, like a store snapshot delivery.
func (m *mockRideRepository) publishRequested() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var requested []*models.Ride
	for _, ride := range m.rides {
		if ride.Status == models.RideStatusRequested {
			clone := *ride
			requested = append(requested, &clone)
		}
	}

	for _, ch := range m.subs {
		ch <- requested
	}
}

func (m *mockRideRepository) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}

	ride, ok := m.rides[id]
	if !ok {
		return nil, interfaces.ErrRideNotFound
	}
	clone := *ride
	return &clone, nil
}

func (m *mockRideRepository) AcceptRide(ctx context.Context, id string, stamp *models.DriverStamp) error {
	atomic.AddInt32(&m.AcceptCallCount, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AcceptError != nil {
		return m.AcceptError
	}

	ride, ok := m.rides[id]
	if !ok {
		return interfaces.ErrRideNotFound
	}
	if ride.Status != models.RideStatusRequested || ride.DriverID != "" {
		return interfaces.ErrRideAlreadyAccepted
	}

	now := time.Now()
	ride.Status = models.RideStatusAccepted
	ride.DriverID = stamp.DriverID
	ride.DriverName = stamp.Name
	ride.DriverPhone = stamp.Phone
	ride.DriverGender = stamp.Gender
	car := stamp.Car
	ride.DriverCar = &car
	ride.DriverPlate = stamp.Plate
	ride.AcceptedAt = &now
	ride.UpdateTime = now
	return nil
}

func (m *mockRideRepository) StartRide(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StartError != nil {
		return m.StartError
	}

	ride, ok := m.rides[id]
	if !ok {
		return interfaces.ErrRideNotFound
	}
	if ride.Status != models.RideStatusAccepted {
		return interfaces.ErrRideNotAccepted
	}

	ride.Status = models.RideStatusInProgress
	ride.UpdateTime = time.Now()
	return nil
}

func (m *mockRideRepository) CompleteRide(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CompleteError != nil {
		return m.CompleteError
	}

	ride, ok := m.rides[id]
	if !ok {
		return interfaces.ErrRideNotFound
	}
	if ride.Status != models.RideStatusInProgress {
		return interfaces.ErrRideNotInProgress
	}

	now := time.Now()
	ride.Status = models.RideStatusCompleted
	ride.CompletedAt = &now
	ride.UpdateTime = now
	return nil
}

func (m *mockRideRepository) ListenRequested(ctx context.Context) (<-chan []*models.Ride, error) {
	m.mu.Lock()
	ch := make(chan []*models.Ride, 16)
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	atomic.AddInt32(&m.ListenerCount, 1)

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(ch)
		m.mu.Unlock()
		atomic.AddInt32(&m.ListenerCount, -1)
	}()

	return ch, nil
}

func (m *mockRideRepository) ListenRide(ctx context.Context, rideID string) (<-chan *models.Ride, error) {
	m.mu.Lock()
	ch := make(chan *models.Ride, 16)
	id := m.nextRideSub
	m.nextRideSub++
	m.rideSubs[id] = rideSub{rideID: rideID, ch: ch}
	if ride, ok := m.rides[rideID]; ok {
		clone := *ride
		ch <- &clone
	}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.rideSubs, id)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

func (m *mockRideRepository) CompletedByDriver(ctx context.Context, driverID string, since time.Time) ([]*models.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var completed []*models.Ride
	for _, ride := range m.rides {
		if ride.Status != models.RideStatusCompleted || ride.DriverID != driverID {
			continue
		}
		if ride.CompletedAt == nil || ride.CompletedAt.Before(since) {
			continue
		}
		clone := *ride
		completed = append(completed, &clone)
	}
	return completed, nil
}

type mockDriverRepository struct {
	mu      sync.Mutex
	drivers map[string]*models.Driver

	CreateCallCount int32

	CreateError error
	GetError    error
}

func newMockDriverRepository() *mockDriverRepository {
	return &mockDriverRepository{
		drivers: make(map[string]*models.Driver),
	}
}

func (m *mockDriverRepository) addDriver(driver *models.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *mockDriverRepository) driver(id string) *models.Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	if driver, ok := m.drivers[id]; ok {
		clone := *driver
		return &clone
	}
	return nil
}

func (m *mockDriverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return nil, m.GetError
	}

	driver, ok := m.drivers[id]
	if !ok {
		return nil, interfaces.ErrDriverNotFound
	}
	clone := *driver
	return &clone, nil
}

func (m *mockDriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.drivers[driver.ID]; ok {
		return interfaces.ErrDriverExists
	}

	clone := *driver
	m.drivers[driver.ID] = &clone
	return nil
}

func (m *mockDriverRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	driver, ok := m.drivers[id]
	if !ok {
		return interfaces.ErrDriverNotFound
	}

	if name, ok := updates["fullName"].(string); ok {
		driver.FullName = name
	}
	if phone, ok := updates["phone"].(string); ok {
		driver.Phone = phone
	}
	if vehicle, ok := updates["vehicle"].(map[string]interface{}); ok {
		if vehicleMake, ok := vehicle["make"].(string); ok {
			driver.Vehicle.Make = vehicleMake
		}
		if model, ok := vehicle["model"].(string); ok {
			driver.Vehicle.Model = model
		}
	}
	return nil
}

type mockFeedbackRepository struct {
	mu      sync.Mutex
	entries []*models.Feedback

	CreateError error
}

func (m *mockFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return m.CreateError
	}
	m.entries = append(m.entries, feedback)
	return nil
}

type fakeIdentityProvider struct {
	uid string

	SignInCallCount int32
	SignUpCallCount int32

	SignInError error
	SignUpError error
}

func (f *fakeIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.User, error) {
	atomic.AddInt32(&f.SignInCallCount, 1)
	if f.SignInError != nil {
		return nil, f.SignInError
	}
	return &identity.User{UID: f.uid, Email: email}, nil
}

func (f *fakeIdentityProvider) SignUp(ctx context.Context, email, password string) (*identity.User, error) {
	atomic.AddInt32(&f.SignUpCallCount, 1)
	if f.SignUpError != nil {
		return nil, f.SignUpError
	}
	return &identity.User{UID: f.uid, Email: email}, nil
}

// newTestSession builds a SessionService already signed in as uid.
func newTestSession(t *testing.T, uid string, drivers interfaces.DriverRepository) *SessionService {
	t.Helper()
	session := NewSessionService(&fakeIdentityProvider{uid: uid}, drivers, testLogger(t))
	if err := session.SignIn(context.Background(), uid+"@school.edu", "password"); err != nil {
		t.Fatalf("failed to sign in test session: %v", err)
	}
	return session
}
