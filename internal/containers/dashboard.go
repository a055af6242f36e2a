package containers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/dates"
	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/metrics"
	"github.com/csg33k/billed/internal/ports"
	"github.com/csg33k/billed/internal/templates"
)

// dashboardStatuses is the order of the dashboard lists.
var dashboardStatuses = []domain.BillStatus{
	domain.StatusPending,
	domain.StatusAccepted,
	domain.StatusRefused,
}

// FilteredBills returns the bills with the given status, latest first.
func FilteredBills(bills []domain.Bill, status domain.BillStatus) []domain.Bill {
	out := make([]domain.Bill, 0, len(bills))
	for _, b := range bills {
		if b.Status == status {
			out = append(out, b)
		}
	}
	dates.SortDescending(out, func(b domain.Bill) string { return b.Date })
	return out
}

// Cards maps bills to dashboard cards, keeping their order.
func Cards(bills []domain.Bill) []templates.BillCard {
	cards := make([]templates.BillCard, 0, len(bills))
	for _, b := range bills {
		cards = append(cards, templates.NewBillCard(b))
	}
	return cards
}

// Dashboard is the controller of the admin review screen.
type Dashboard struct {
	store    ports.BillStore
	navigate Navigator
	dialog   ports.DialogPresenter
}

func NewDashboard(store ports.BillStore, navigate Navigator, dialog ports.DialogPresenter) *Dashboard {
	return &Dashboard{store: store, navigate: navigate, dialog: dialog}
}

// GetBills returns every bill grouped by status.
func (d *Dashboard) GetBills(ctx context.Context) ([]templates.StatusGroup, error) {
	bills, err := d.store.ListBills(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	groups := make([]templates.StatusGroup, 0, len(dashboardStatuses))
	for i, status := range dashboardStatuses {
		groups = append(groups, templates.StatusGroup{
			Index:  i + 1,
			Status: status,
			Cards:  Cards(FilteredBills(bills, status)),
		})
	}
	return groups, nil
}

// HandleEditTicket returns the review form of one bill.
func (d *Dashboard) HandleEditTicket(ctx context.Context, id string) (templ.Component, error) {
	bill, err := d.store.GetBill(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bill %s: %w", id, err)
	}
	return templates.DashboardFormUI(*bill), nil
}

// HandleClickIconEye opens the receipt dialog of the bill under review.
func (d *Dashboard) HandleClickIconEye(ctx context.Context, billURL string) error {
	return openReceipt(ctx, d.dialog, billURL)
}

// HandleAcceptSubmit accepts the bill with the admin's comment.
func (d *Dashboard) HandleAcceptSubmit(ctx context.Context, id, commentAdmin string) error {
	return d.review(ctx, id, domain.StatusAccepted, commentAdmin)
}

// HandleRefuseSubmit refuses the bill with the admin's comment.
func (d *Dashboard) HandleRefuseSubmit(ctx context.Context, id, commentAdmin string) error {
	return d.review(ctx, id, domain.StatusRefused, commentAdmin)
}

func (d *Dashboard) review(ctx context.Context, id string, status domain.BillStatus, commentAdmin string) error {
	bill, err := d.store.GetBill(ctx, id)
	if err != nil {
		return fmt.Errorf("get bill %s: %w", id, err)
	}
	bill.Status = status
	bill.CommentAdmin = commentAdmin

	saveErr := d.store.SaveBill(ctx, bill)
	if saveErr != nil {
		slog.ErrorContext(ctx, "review bill failed", "bill", id, "status", status, "err", saveErr)
		saveErr = fmt.Errorf("save bill %s: %w", id, saveErr)
	} else {
		metrics.BillsReviewedTotal.WithLabelValues(string(status)).Inc()
	}
	d.navigate(domain.RouteDashboard)
	return saveErr
}
