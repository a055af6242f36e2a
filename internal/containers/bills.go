package containers

import (
	"context"
	"fmt"

	"github.com/csg33k/billed/internal/dates"
	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/ports"
	"github.com/csg33k/billed/internal/templates"
)

// Bills is the controller of the employee's bill list.
type Bills struct {
	store    ports.BillStore
	session  ports.SessionStore
	navigate Navigator
	dialog   ports.DialogPresenter
}

func NewBills(store ports.BillStore, session ports.SessionStore, navigate Navigator, dialog ports.DialogPresenter) *Bills {
	return &Bills{store: store, session: session, navigate: navigate, dialog: dialog}
}

// HandleClickNewBill navigates to the new-bill form.
func (b *Bills) HandleClickNewBill() {
	b.navigate(domain.RouteNewBill)
}

// HandleClickIconEye opens the receipt dialog for the clicked row.
func (b *Bills) HandleClickIconEye(ctx context.Context, billURL string) error {
	return openReceipt(ctx, b.dialog, billURL)
}

// GetBills lists the current employee's bills, latest first, with display
// dates. Without an employee in session it returns domain.ErrNoUser. Store
// errors are wrapped; use ClassifyError to render them.
func (b *Bills) GetBills(ctx context.Context) ([]templates.BillRow, error) {
	user, err := CurrentEmployee(ctx, b.session)
	if err != nil {
		return nil, err
	}
	bills, err := b.store.ListBills(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	rows := make([]templates.BillRow, 0, len(bills))
	for _, bill := range bills {
		rows = append(rows, templates.NewBillRow(bill))
	}
	dates.SortDescending(rows, func(r templates.BillRow) string { return r.ISODate })
	return rows, nil
}
