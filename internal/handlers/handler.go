package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/csg33k/billed/internal/adapters/sqlite"
	"github.com/csg33k/billed/internal/containers"
	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/ports"
	"github.com/csg33k/billed/internal/templates"
)

const defaultMaxReceiptBytes = 5 << 20

type Handler struct {
	store           ports.BillStore
	sessions        ports.SessionStore
	statements      ports.StatementGenerator
	maxReceiptBytes int64
}

func New(store ports.BillStore, sessions ports.SessionStore, statements ports.StatementGenerator, maxReceiptBytes int64) *Handler {
	if maxReceiptBytes <= 0 {
		maxReceiptBytes = defaultMaxReceiptBytes
	}
	return &Handler{store: store, sessions: sessions, statements: statements, maxReceiptBytes: maxReceiptBytes}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.page(domain.RouteLogin))
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("GET /logout", h.logout)

	mux.HandleFunc("GET /employee/bills", h.page(domain.RouteBills))
	mux.HandleFunc("GET /employee/bills/list", h.billsList)
	mux.HandleFunc("POST /employee/bills/new", h.clickNewBill)
	mux.HandleFunc("GET /employee/bills/receipt", h.employeeReceipt)
	mux.HandleFunc("GET /employee/bills/statement.pdf", h.statement)

	mux.HandleFunc("GET /employee/bill/new", h.page(domain.RouteNewBill))
	mux.HandleFunc("POST /employee/bill/new", h.submitNewBill)
	mux.HandleFunc("POST /employee/bill/new/file", h.changeFile)
	mux.HandleFunc("GET /employee/bill/{id}/edit", h.editBill)

	mux.HandleFunc("GET /admin/dashboard", h.page(domain.RouteDashboard))
	mux.HandleFunc("GET /admin/bills/receipt", h.adminReceipt)
	mux.HandleFunc("GET /admin/bills/{id}", h.editTicket)
	mux.HandleFunc("POST /admin/bills/{id}/accept", h.reviewBill(domain.StatusAccepted))
	mux.HandleFunc("POST /admin/bills/{id}/refuse", h.reviewBill(domain.StatusRefused))

	mux.HandleFunc("GET "+sqlite.ReceiptPath+"{key}", h.receipt)
	mux.Handle("GET /metrics", promhttp.Handler())
	return logRequests(mux)
}

// page renders a route through the router.
func (h *Handler) page(route domain.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := h.begin(w, r)
		c, err := rq.router().Render(r.Context(), route)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		render(w, r, c)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	user := domain.StoredUser{
		Type:   domain.UserType(r.FormValue("type")),
		Email:  strings.TrimSpace(r.FormValue("email")),
		Status: "connected",
	}
	if !user.Recognized() {
		http.Error(w, "unknown user type", 400)
		return
	}
	if user.Email == "" {
		http.Error(w, "missing email", 400)
		return
	}
	if err := rq.session.Set(r.Context(), domain.UserKey, user.Encode()); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := rq.newBill().Reset(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "reset draft failed", "err", err)
	}
	if user.Type == domain.UserAdmin {
		rq.nav.navigate(domain.RouteDashboard)
	} else {
		rq.nav.navigate(domain.RouteBills)
	}
	rq.finish(http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if err := rq.session.Set(r.Context(), domain.UserKey, ""); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	rq.nav.navigate(domain.RouteLogin)
	rq.finish(http.StatusOK)
}

// billsList renders the bills table fragment that replaces the loading state.
func (h *Handler) billsList(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	rows, err := rq.bills().GetBills(r.Context())
	if errors.Is(err, domain.ErrNoUser) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "get bills failed", "err", err)
		render(w, r, templates.BillsUI(templates.BillsPage{Error: containers.ClassifyError(err)}))
		return
	}
	render(w, r, templates.BillsUI(templates.BillsPage{Bills: rows}))
}

func (h *Handler) clickNewBill(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	rq.bills().HandleClickNewBill()
	rq.finish(http.StatusOK)
}

func (h *Handler) employeeReceipt(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if err := rq.bills().HandleClickIconEye(r.Context(), r.URL.Query().Get("url")); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	user, err := containers.CurrentEmployee(r.Context(), rq.session)
	if errors.Is(err, domain.ErrNoUser) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	bills, err := h.store.ListBills(r.Context(), user.Email)
	if err != nil {
		http.Error(w, containers.ClassifyError(err), 500)
		return
	}
	var buf bytes.Buffer
	if err := h.statements.Generate(r.Context(), user, bills, &buf); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	filename := fmt.Sprintf("notes_de_frais_%s.pdf", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

// changeFile receives the receipt picked in the file input and answers with
// a fresh input, which clears the selection in the browser. A receipt over
// the size limit is rejected with an alert, never truncated.
func (h *Handler) changeFile(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	f, err := h.selectedFile(w, r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	d, err := rq.newBill().HandleChangeFile(r.Context(), f)
	if errors.Is(err, domain.ErrNoUser) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		slog.WarnContext(r.Context(), "receipt not kept", "file", f.Name, "err", err)
	}
	rq.alerts.apply(w)
	render(w, r, templates.FileFieldUI(templates.FileField{FileName: d.FileName}))
}

// selectedFile reads the "file" part of the upload. Content is read up to one
// byte past the limit so an oversize receipt is flagged rather than cut.
func (h *Handler) selectedFile(w http.ResponseWriter, r *http.Request) (containers.SelectedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxReceiptBytes+1<<20)
	var tooBig *http.MaxBytesError
	if err := r.ParseMultipartForm(h.maxReceiptBytes); err != nil {
		if errors.As(err, &tooBig) {
			return containers.SelectedFile{TooLarge: true}, nil
		}
		return containers.SelectedFile{}, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return containers.SelectedFile{}, errors.New("missing file")
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, h.maxReceiptBytes+1))
	if err != nil {
		return containers.SelectedFile{}, err
	}
	f := containers.SelectedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}
	if int64(len(content)) > h.maxReceiptBytes {
		f.Content, f.TooLarge = nil, true
	}
	return f, nil
}

func (h *Handler) submitNewBill(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	amount, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("amount")), 64)
	pct, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("pct")))
	form := containers.NewBillForm{
		Type:       r.FormValue("expense-type"),
		Name:       r.FormValue("expense-name"),
		Date:       r.FormValue("datepicker"),
		Amount:     amount,
		VAT:        r.FormValue("vat"),
		Pct:        pct,
		Commentary: r.FormValue("commentary"),
	}
	err := rq.newBill().HandleSubmit(r.Context(), form)
	if errors.Is(err, domain.ErrNoUser) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if errors.Is(err, domain.ErrReceiptRequired) {
		rq.finish(http.StatusUnprocessableEntity)
		return
	}
	rq.finish(http.StatusOK)
}

// editBill opens the new-bill form on an existing bill.
func (h *Handler) editBill(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	c, err := rq.router().RenderView(r.Context(), domain.RouteNewBill, rq.editView(r.PathValue("id")))
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, domain.ErrNoUser) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	render(w, r, c)
}

func (h *Handler) editTicket(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if !rq.isAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	c, err := rq.dashboard().HandleEditTicket(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	render(w, r, c)
}

func (h *Handler) adminReceipt(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if err := rq.dashboard().HandleClickIconEye(r.Context(), r.URL.Query().Get("url")); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func (h *Handler) reviewBill(status domain.BillStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rq := h.begin(w, r)
		if !rq.isAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		id, comment := r.PathValue("id"), r.FormValue("commentAdmin")
		var err error
		if status == domain.StatusAccepted {
			err = rq.dashboard().HandleAcceptSubmit(r.Context(), id, comment)
		} else {
			err = rq.dashboard().HandleRefuseSubmit(r.Context(), id, comment)
		}
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil && !rq.nav.set {
			http.Error(w, err.Error(), 500)
			return
		}
		rq.finish(http.StatusOK)
	}
}

// receipt serves an uploaded receipt image to the employee who uploaded it
// or to an admin. Anyone else gets a 404.
func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	user, err := containers.CurrentEmployee(r.Context(), rq.session)
	if errors.Is(err, domain.ErrNoUser) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	rc, err := h.store.GetReceipt(r.Context(), r.PathValue("key"))
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if user.Type != domain.UserAdmin && rc.Email != user.Email {
		http.NotFound(w, r)
		return
	}
	ct := rc.ContentType
	if ct == "" {
		ct = http.DetectContentType(rc.Content)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, rc.FileName))
	w.Write(rc.Content)
}

// render writes a templ component to the response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), 500)
	}
}
