package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/piyol1998/stokcer-sub001/internal/cartstore"
	"github.com/piyol1998/stokcer-sub001/internal/client"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/piyol1998/stokcer-sub001/internal/notify"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := client.NewDBClient("sqlite", fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func seededCatalog(t *testing.T, db *gorm.DB) repository.CatalogRepository {
	t.Helper()
	catalog := repository.NewCatalogRepository(db)
	require.NoError(t, catalog.Seed(context.Background()))
	return catalog
}

func seededPlans(t *testing.T, db *gorm.DB) repository.PlanRepository {
	t.Helper()
	plans := repository.NewPlanRepository(db)
	require.NoError(t, plans.Seed(context.Background()))
	return plans
}

// memBackend is an in-memory cartstore.Backend.
type memBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cartstore.ErrMiss
	}
	return v, nil
}

func (m *memBackend) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memBackend) Close() error { return nil }

func (m *memBackend) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) ofType(eventType string) []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notify.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// stubPayment returns canned responses.
type stubPayment struct {
	name      string
	resp      *client.TransactionResponse
	err       error
	statusErr error
}

func (s *stubPayment) Name() string { return s.name }

func (s *stubPayment) CreateTransaction(context.Context, *client.TransactionRequest) (*client.TransactionResponse, error) {
	return s.resp, s.err
}

func (s *stubPayment) GetStatus(_ context.Context, orderID, _ string) (*client.TransactionStatus, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &client.TransactionStatus{OrderID: orderID, Status: model.StatusPending}, nil
}

// failingCreateRepo simulates a database outage on insert.
type failingCreateRepo struct {
	repository.CheckoutSessionRepository
}

func (failingCreateRepo) Create(context.Context, *model.CheckoutSession) error {
	return errors.New("database is locked")
}

var testUser = &model.User{
	ID:        "user-1234567890",
	FirstName: "Demo",
	LastName:  "Shopper",
	Email:     "demo@stokcer.test",
	Phone:     "+628123456789",
}
