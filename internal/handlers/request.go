package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/csg33k/billed/internal/adapters/session"
	"github.com/csg33k/billed/internal/containers"
	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/metrics"
	"github.com/csg33k/billed/internal/ports"
	"github.com/csg33k/billed/internal/router"
	"github.com/csg33k/billed/internal/templates"
)

// SessionCookie names the cookie carrying the browser's session id.
const SessionCookie = "billed_session"

// AlertEvent is the htmx event raised in the browser for every alert.
const AlertEvent = "billed:alert"

// request gathers the per-request collaborators handed to the controllers.
type request struct {
	h       *Handler
	w       http.ResponseWriter
	r       *http.Request
	session ports.SessionStore
	nav     *navigation
	alerts  *alerts
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) *request {
	return &request{
		h:       h,
		w:       w,
		r:       r,
		session: session.Scoped(h.sessions, sessionID(w, r)),
		nav:     &navigation{},
		alerts:  &alerts{},
	}
}

// sessionID returns the id in the session cookie, setting a new one when the
// browser has none.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (rq *request) bills() *containers.Bills {
	return containers.NewBills(rq.h.store, rq.session, rq.nav.navigate, rq.dialog())
}

func (rq *request) newBill() *containers.NewBill {
	return containers.NewNewBill(rq.h.store, rq.session, rq.nav.navigate, rq.alerts)
}

func (rq *request) dashboard() *containers.Dashboard {
	return containers.NewDashboard(rq.h.store, rq.nav.navigate, rq.dialog())
}

func (rq *request) dialog() ports.DialogPresenter {
	return dialog{w: rq.w}
}

func (rq *request) isAdmin() bool {
	user, err := containers.CurrentUser(rq.r.Context(), rq.session)
	return err == nil && user.Type == domain.UserAdmin
}

func (rq *request) router() *router.Router {
	return router.New(rq.session, map[domain.Route]router.View{
		domain.RouteLogin: func(context.Context, domain.StoredUser) (templ.Component, error) {
			return templates.LoginUI(), nil
		},
		domain.RouteBills: func(context.Context, domain.StoredUser) (templ.Component, error) {
			return templates.BillsUI(templates.BillsPage{Loading: true}), nil
		},
		domain.RouteNewBill: func(ctx context.Context, _ domain.StoredUser) (templ.Component, error) {
			if err := rq.newBill().Reset(ctx); err != nil {
				return nil, err
			}
			return templates.NewBillUI(domain.Bill{}, templates.FileField{}), nil
		},
		domain.RouteDashboard: func(ctx context.Context, _ domain.StoredUser) (templ.Component, error) {
			groups, err := rq.dashboard().GetBills(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "get dashboard bills failed", "err", err)
				return templates.DashboardUI(templates.DashboardPage{Error: containers.ClassifyError(err)}), nil
			}
			return templates.DashboardUI(templates.DashboardPage{Groups: groups}), nil
		},
	})
}

// editView prefills the new-bill form with the bill id.
func (rq *request) editView(id string) router.View {
	return func(ctx context.Context, _ domain.StoredUser) (templ.Component, error) {
		bill, err := rq.newBill().EditBill(ctx, id)
		if err != nil {
			return nil, err
		}
		return templates.NewBillUI(*bill, templates.FileField{FileName: bill.FileName}), nil
	}
}

// finish writes the pending alerts and navigation, then the status.
// htmx requests get an HX-Redirect header; plain form posts a 303.
func (rq *request) finish(status int) {
	rq.alerts.apply(rq.w)
	if rq.nav.set {
		path := rq.nav.route.Path()
		if rq.r.Header.Get("HX-Request") == "true" {
			rq.w.Header().Set("HX-Redirect", path)
		} else {
			http.Redirect(rq.w, rq.r, path, http.StatusSeeOther)
			return
		}
	}
	rq.w.WriteHeader(status)
}

type navigation struct {
	route domain.Route
	set   bool
}

func (n *navigation) navigate(route domain.Route) {
	n.route, n.set = route, true
}

// alerts collects alert messages raised while handling a request.
type alerts struct {
	messages []string
}

func (a *alerts) Alert(_ context.Context, message string) {
	a.messages = append(a.messages, message)
}

func (a *alerts) apply(w http.ResponseWriter) {
	if len(a.messages) == 0 {
		return
	}
	b, err := json.Marshal(map[string]map[string]string{
		AlertEvent: {"message": strings.Join(a.messages, "\n")},
	})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(b))
}

// dialog renders the dialog content as the response body; htmx swaps it
// into the modal slot.
type dialog struct {
	w http.ResponseWriter
}

func (d dialog) Open(ctx context.Context, content templ.Component) error {
	d.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return content.Render(ctx, d.w)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// logRequests logs every request and records its latency.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).
			Observe(elapsed.Seconds())
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", elapsed)
	})
}
