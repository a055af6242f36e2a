package ports

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/domain"
)

// BillStore defines persistence operations for bills and their receipts.
type BillStore interface {
	// ListBills returns the bills of the given employee, or every bill when
	// email is empty.
	ListBills(ctx context.Context, email string) ([]domain.Bill, error)
	GetBill(ctx context.Context, id string) (*domain.Bill, error)
	// SaveBill creates the bill, or updates it when a bill with the same ID exists.
	SaveBill(ctx context.Context, b *domain.Bill) error

	UploadReceipt(ctx context.Context, r *domain.Receipt) (domain.UploadResult, error)
	GetReceipt(ctx context.Context, key string) (*domain.Receipt, error)
}

// SessionStore is the key-value store holding per-browser session data.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// DialogPresenter shows content in a modal dialog.
type DialogPresenter interface {
	Open(ctx context.Context, content templ.Component) error
}

// Alerter surfaces a blocking message to the user.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// StatementGenerator writes a printable statement of bills.
type StatementGenerator interface {
	Generate(ctx context.Context, user domain.StoredUser, bills []domain.Bill, w io.Writer) error
}
