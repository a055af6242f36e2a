package containers_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/adapters/session"
	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/ports"
	"github.com/csg33k/billed/internal/templates"
)

// fakeStore keeps bills and receipts in memory. The err fields make the
// matching operation fail.
type fakeStore struct {
	mu       sync.Mutex
	bills    map[string]domain.Bill
	order    []string
	receipts map[string]domain.Receipt
	uploads  int
	saves    int

	listErr   error
	getErr    error
	saveErr   error
	uploadErr error
}

var _ ports.BillStore = (*fakeStore)(nil)

func newFakeStore(bills ...domain.Bill) *fakeStore {
	s := &fakeStore{bills: map[string]domain.Bill{}, receipts: map[string]domain.Receipt{}}
	for _, b := range bills {
		s.bills[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	return s
}

func (s *fakeStore) ListBills(_ context.Context, email string) ([]domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Bill
	for _, id := range s.order {
		b := s.bills[id]
		if email == "" || b.Email == email {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) GetBill(_ context.Context, id string) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	b, ok := s.bills[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (s *fakeStore) SaveBill(_ context.Context, b *domain.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	if b.ID == "" {
		b.ID = fmt.Sprintf("bill-%d", len(s.order)+1)
	}
	if _, ok := s.bills[b.ID]; !ok {
		s.order = append(s.order, b.ID)
	}
	s.bills[b.ID] = *b
	return nil
}

func (s *fakeStore) UploadReceipt(_ context.Context, r *domain.Receipt) (domain.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.uploadErr != nil {
		return domain.UploadResult{}, s.uploadErr
	}
	key := fmt.Sprintf("receipt-%d", s.uploads)
	rc := *r
	rc.Key = key
	s.receipts[key] = rc
	return domain.UploadResult{Key: key, FileURL: "/receipts/" + key, FileName: r.FileName}, nil
}

func (s *fakeStore) GetReceipt(_ context.Context, key string) (*domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc, ok := s.receipts[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rc, nil
}

type fakeDialog struct {
	opened []templ.Component
}

func (d *fakeDialog) Open(_ context.Context, c templ.Component) error {
	d.opened = append(d.opened, c)
	return nil
}

type fakeAlerter struct {
	messages []string
}

func (a *fakeAlerter) Alert(_ context.Context, message string) {
	a.messages = append(a.messages, message)
}

type recorder struct {
	routes []domain.Route
}

func (r *recorder) navigate(route domain.Route) {
	r.routes = append(r.routes, route)
}

func (r *recorder) last() domain.Route {
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

// loggedIn returns a session holding the given user.
func loggedIn(t *testing.T, user domain.StoredUser) ports.SessionStore {
	t.Helper()
	s := session.NewMemory()
	if err := s.Set(context.Background(), domain.UserKey, user.Encode()); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return s
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	out, err := templates.Render(context.Background(), c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

var errServer = errors.New("Erreur 500: internal error")
