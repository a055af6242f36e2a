package containers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/metrics"
	"github.com/csg33k/billed/internal/ports"
)

// DraftKey is the session key of the new-bill draft.
const DraftKey = "bill-draft"

// InvalidFileMessage is the alert shown when a receipt has a bad extension.
const InvalidFileMessage = "Le justificatif doit être une image au format jpg, jpeg ou png."

// FileTooLargeMessage is the alert shown when a receipt exceeds the size limit.
const FileTooLargeMessage = "Le justificatif est trop volumineux."

// defaultPct is the VAT percentage used when the form leaves it empty.
const defaultPct = 20

// FileState is the state of the receipt selection.
type FileState string

const (
	FileNone       FileState = "no-file"
	FileValidating FileState = "validating"
	FileAccepted   FileState = "accepted"
	FileRejected   FileState = "rejected"
)

// Draft is the receipt selection carried between the upload request and the
// submit request. BillID is the key returned by the first upload, or the id
// of the bill being edited. Owner is the email of the edited bill.
type Draft struct {
	State        FileState `json:"state"`
	BillID       string    `json:"billId,omitempty"`
	Owner        string    `json:"owner,omitempty"`
	FileURL      string    `json:"fileUrl,omitempty"`
	FileName     string    `json:"fileName,omitempty"`
	RequiresFile bool      `json:"requiresFile"`
}

func newDraft() Draft {
	return Draft{State: FileNone, RequiresFile: true}
}

// CanSubmit reports whether the form may be submitted: a receipt has been
// accepted, possibly before a later rejected attempt, or the draft edits a
// bill whose receipt does not have to change.
func (d Draft) CanSubmit() bool {
	if !d.RequiresFile {
		return true
	}
	return d.State == FileAccepted || d.FileURL != ""
}

// SelectedFile is a file picked in the receipt input. TooLarge is set when
// the upload was cut at the size limit, in which case Content is incomplete.
type SelectedFile struct {
	Name        string
	ContentType string
	Content     []byte
	TooLarge    bool
}

// NewBillForm holds the visible fields of the new-bill form.
type NewBillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     float64
	VAT        string
	Pct        int
	Commentary string
}

// ValidReceiptExtension reports whether name ends in .jpg, .jpeg or .png,
// case-insensitively. The extension is what follows the last dot.
func ValidReceiptExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	switch strings.ToLower(name[i+1:]) {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}

// NewBill is the controller of the new-bill form.
type NewBill struct {
	store    ports.BillStore
	session  ports.SessionStore
	navigate Navigator
	alerter  ports.Alerter
}

func NewNewBill(store ports.BillStore, session ports.SessionStore, navigate Navigator, alerter ports.Alerter) *NewBill {
	return &NewBill{store: store, session: session, navigate: navigate, alerter: alerter}
}

// Draft returns the current draft, or a fresh one when none is stored.
func (nb *NewBill) Draft(ctx context.Context) (Draft, error) {
	raw, ok, err := nb.session.Get(ctx, DraftKey)
	if err != nil {
		return Draft{}, fmt.Errorf("read draft: %w", err)
	}
	if !ok || raw == "" {
		return newDraft(), nil
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return newDraft(), nil
	}
	return d, nil
}

func (nb *NewBill) saveDraft(ctx context.Context, d Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := nb.session.Set(ctx, DraftKey, string(b)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Reset starts a new bill with no receipt.
func (nb *NewBill) Reset(ctx context.Context) error {
	return nb.saveDraft(ctx, newDraft())
}

// EditBill starts a draft on an existing bill. Its receipt is kept unless
// another file is accepted. Employees may only edit their own bills; a bill
// of someone else is reported as domain.ErrNotFound and leaves the draft
// untouched.
func (nb *NewBill) EditBill(ctx context.Context, id string) (*domain.Bill, error) {
	user, err := CurrentEmployee(ctx, nb.session)
	if err != nil {
		return nil, err
	}
	bill, err := nb.store.GetBill(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get bill %s: %w", id, err)
	}
	if user.Type != domain.UserAdmin && bill.Email != user.Email {
		return nil, fmt.Errorf("get bill %s: %w", id, domain.ErrNotFound)
	}
	d := Draft{
		State:    FileNone,
		BillID:   bill.ID,
		Owner:    bill.Email,
		FileURL:  bill.FileURL,
		FileName: bill.FileName,
	}
	if err := nb.saveDraft(ctx, d); err != nil {
		return nil, err
	}
	return bill, nil
}

// HandleChangeFile validates and uploads a newly selected receipt.
//
// A file with a bad extension or over the size limit raises one alert and
// moves the draft to FileRejected without touching a receipt accepted
// earlier. A good file is uploaded and its URL and name kept for the
// submission.
func (nb *NewBill) HandleChangeFile(ctx context.Context, f SelectedFile) (Draft, error) {
	user, err := CurrentEmployee(ctx, nb.session)
	if err != nil {
		return Draft{}, err
	}
	d, err := nb.Draft(ctx)
	if err != nil {
		return d, err
	}
	d.State = FileValidating

	if msg := rejectReason(f); msg != "" {
		metrics.ReceiptUploadsTotal.WithLabelValues("rejected").Inc()
		nb.alerter.Alert(ctx, msg)
		d.State = FileRejected
		return d, nb.saveDraft(ctx, d)
	}
	res, err := nb.store.UploadReceipt(ctx, &domain.Receipt{
		Email:       user.Email,
		FileName:    f.Name,
		ContentType: f.ContentType,
		Content:     f.Content,
	})
	if err != nil {
		metrics.ReceiptUploadsTotal.WithLabelValues("failed").Inc()
		slog.ErrorContext(ctx, "receipt upload failed", "file", f.Name, "err", err)
		nb.alerter.Alert(ctx, ClassifyError(err))
		d.State = FileRejected
		if serr := nb.saveDraft(ctx, d); serr != nil {
			return d, serr
		}
		return d, fmt.Errorf("upload receipt: %w", err)
	}

	metrics.ReceiptUploadsTotal.WithLabelValues("accepted").Inc()
	if d.BillID == "" {
		d.BillID = res.Key
	}
	d.FileURL = res.FileURL
	d.FileName = res.FileName
	d.State = FileAccepted
	return d, nb.saveDraft(ctx, d)
}

func rejectReason(f SelectedFile) string {
	switch {
	case f.TooLarge:
		return FileTooLargeMessage
	case !ValidReceiptExtension(f.Name):
		return InvalidFileMessage
	}
	return ""
}

// HandleSubmit saves the bill built from form and the draft, then navigates
// to the bill list. The navigation happens whether or not the store accepts
// the bill; a store error is logged and returned. An edited bill keeps its
// owner.
func (nb *NewBill) HandleSubmit(ctx context.Context, form NewBillForm) error {
	user, err := CurrentEmployee(ctx, nb.session)
	if err != nil {
		return err
	}
	d, err := nb.Draft(ctx)
	if err != nil {
		return err
	}
	if !d.CanSubmit() {
		metrics.BillsSubmittedTotal.WithLabelValues("blocked").Inc()
		nb.alerter.Alert(ctx, InvalidFileMessage)
		return domain.ErrReceiptRequired
	}
	email := user.Email
	if d.Owner != "" {
		email = d.Owner
	}

	pct := form.Pct
	if pct == 0 {
		pct = defaultPct
	}
	bill := &domain.Bill{
		ID:         d.BillID,
		Email:      email,
		Type:       form.Type,
		Name:       form.Name,
		Date:       form.Date,
		Amount:     form.Amount,
		VAT:        form.VAT,
		Pct:        pct,
		Commentary: form.Commentary,
		Status:     domain.StatusPending,
		FileURL:    d.FileURL,
		FileName:   d.FileName,
	}
	saveErr := nb.store.SaveBill(ctx, bill)
	if saveErr != nil {
		metrics.BillsSubmittedTotal.WithLabelValues("failed").Inc()
		slog.ErrorContext(ctx, "save bill failed", "bill", bill.ID, "err", saveErr)
		saveErr = fmt.Errorf("save bill: %w", saveErr)
	} else {
		metrics.BillsSubmittedTotal.WithLabelValues("saved").Inc()
	}

	if err := nb.Reset(ctx); err != nil {
		slog.WarnContext(ctx, "reset draft failed", "err", err)
	}
	nb.navigate(domain.RouteBills)
	return saveErr
}
