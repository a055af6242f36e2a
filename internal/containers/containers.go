// Package containers holds the controllers behind each screen. A controller
// receives its collaborators explicitly: the bill store, the session store,
// a navigator and, where it needs them, a dialog presenter and an alerter.
package containers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/ports"
	"github.com/csg33k/billed/internal/templates"
)

// Navigator moves the user to another route.
type Navigator func(route domain.Route)

// Messages shown by the error state of the list views.
const (
	NotFoundMessage = "Erreur 404"
	ServerMessage   = "Erreur 500"
	GenericMessage  = "Erreur inattendue"
)

// receiptModalWidth is the width in pixels of the receipt image in dialogs.
const receiptModalWidth = 500

// ClassifyError picks the message of the error state from the text of err.
// Store errors carry no status code, so "404" and "500" are looked up in the
// message itself.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "404"):
		return NotFoundMessage
	case strings.Contains(msg, "500"):
		return ServerMessage
	default:
		return GenericMessage
	}
}

// CurrentUser reads the stored user from the session. A missing or
// malformed entry returns a zero user, which is not Recognized.
func CurrentUser(ctx context.Context, session ports.SessionStore) (domain.StoredUser, error) {
	raw, ok, err := session.Get(ctx, domain.UserKey)
	if err != nil {
		return domain.StoredUser{}, fmt.Errorf("read stored user: %w", err)
	}
	if !ok {
		return domain.StoredUser{}, nil
	}
	return domain.ParseStoredUser(raw), nil
}

// CurrentEmployee is CurrentUser for operations scoped to one user's bills.
// It returns domain.ErrNoUser unless the user is recognised and has an email.
func CurrentEmployee(ctx context.Context, session ports.SessionStore) (domain.StoredUser, error) {
	user, err := CurrentUser(ctx, session)
	if err != nil {
		return user, err
	}
	if !user.Recognized() || user.Email == "" {
		return domain.StoredUser{}, domain.ErrNoUser
	}
	return user, nil
}

// ReceiptURL returns raw when it can be shown as an image source: an
// absolute http(s) URL or a path on this server. Anything else returns "".
func ReceiptURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "undefined" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return ""
		}
		return raw
	case "":
		if strings.HasPrefix(u.Path, "/") && u.Host == "" {
			return raw
		}
	}
	return ""
}

// openReceipt shows the receipt at billURL, or the placeholder when the URL
// is unusable.
func openReceipt(ctx context.Context, dialog ports.DialogPresenter, billURL string) error {
	return dialog.Open(ctx, templates.ReceiptModal(ReceiptURL(billURL), receiptModalWidth))
}
