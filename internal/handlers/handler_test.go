package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/csg33k/billed/internal/adapters/pdf"
	"github.com/csg33k/billed/internal/adapters/session"
	"github.com/csg33k/billed/internal/adapters/sqlite"
	"github.com/csg33k/billed/internal/handlers"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newServerLimit(t, 1<<20)
}

// newServerLimit starts a server accepting receipts of at most limit bytes.
func newServerLimit(t *testing.T, limit int64) *httptest.Server {
	t.Helper()
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "billed.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	srv := httptest.NewServer(handlers.New(repo, session.NewMemory(), pdf.Generator{}, limit).Routes())
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a browser-like client with its own cookie jar. Redirects
// are not followed so tests can inspect them.
func newClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &client{t: t, base: srv.URL, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (c *client) do(req *http.Request, htmx bool) (*http.Response, string) {
	c.t.Helper()
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, c.base+path, nil)
	return c.do(req, true)
}

func (c *client) postForm(path string, form url.Values, htmx bool) (*http.Response, string) {
	c.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, htmx)
}

func (c *client) upload(name string, content []byte) (*http.Response, string) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		c.t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	req, _ := http.NewRequest(http.MethodPost, c.base+"/employee/bill/new/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, true)
}

func (c *client) login(userType, email string) {
	c.t.Helper()
	resp, _ := c.postForm("/login", url.Values{"type": {userType}, "email": {email}}, true)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login status = %d", resp.StatusCode)
	}
}

var hotelForm = url.Values{
	"expense-type": {"Hôtel et logement"},
	"expense-name": {"Hôtel à Paris"},
	"datepicker":   {"2021-01-04"},
	"amount":       {"149"},
	"vat":          {"20"},
	"pct":          {""},
	"commentary":   {""},
}

// ---------------------------------------------------------------------------
// Login and routing
// ---------------------------------------------------------------------------

func TestLoginPage(t *testing.T) {
	c := newClient(t, newServer(t))
	resp, body := c.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `data-testid="form-employee"`) {
		t.Error("login forms missing")
	}
	var found bool
	for _, ck := range resp.Cookies() {
		found = found || ck.Name == handlers.SessionCookie
	}
	if !found {
		t.Error("session cookie not set")
	}
}

func TestLogin_Redirects(t *testing.T) {
	srv := newServer(t)
	tests := []struct {
		userType string
		htmx     bool
		header   string
		want     string
		status   int
	}{
		{"Employee", true, "HX-Redirect", "/employee/bills", http.StatusOK},
		{"Admin", true, "HX-Redirect", "/admin/dashboard", http.StatusOK},
		{"Employee", false, "Location", "/employee/bills", http.StatusSeeOther},
	}
	for _, tt := range tests {
		c := newClient(t, srv)
		resp, _ := c.postForm("/login", url.Values{"type": {tt.userType}, "email": {"x@x"}}, tt.htmx)
		if resp.StatusCode != tt.status || resp.Header.Get(tt.header) != tt.want {
			t.Errorf("%s login: status %d %s=%q", tt.userType, resp.StatusCode, tt.header, resp.Header.Get(tt.header))
		}
	}

	c := newClient(t, srv)
	if resp, _ := c.postForm("/login", url.Values{"type": {"Guest"}}, true); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown user type status = %d", resp.StatusCode)
	}
	if resp, _ := c.postForm("/login", url.Values{"type": {"Employee"}, "email": {"  "}}, true); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank email status = %d", resp.StatusCode)
	}
}

// submitHotel logs c in as email and submits the hotel bill with a receipt.
func submitHotel(t *testing.T, c *client, email string) {
	t.Helper()
	c.login("Employee", email)
	c.get("/employee/bill/new")
	c.upload("facture.jpg", []byte{0xff, 0xd8, 0xff, 0xe0})
	if resp, _ := c.postForm("/employee/bill/new", hotelForm, true); resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
}

func TestBillsList_RequiresEmployee(t *testing.T) {
	srv := newServer(t)
	submitHotel(t, newClient(t, srv), "alice@test.tld")

	anon := newClient(t, srv)
	resp, body := anon.get("/employee/bills/list")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if strings.Contains(body, "Hôtel à Paris") {
		t.Error("anonymous list shows another employee's bill")
	}
	if resp, _ := anon.upload("facture.jpg", []byte("img")); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous upload status = %d, want 401", resp.StatusCode)
	}
	if resp, _ := anon.postForm("/employee/bill/new", hotelForm, true); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous submit status = %d, want 401", resp.StatusCode)
	}
	if resp, _ := anon.get("/employee/bills/statement.pdf"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous statement status = %d, want 401", resp.StatusCode)
	}
}

func TestBillsPage_RequiresUser(t *testing.T) {
	c := newClient(t, newServer(t))
	_, body := c.get("/employee/bills")
	if strings.Contains(body, "Mes notes de frais") {
		t.Error("bills page rendered without a user")
	}
	c.login("Employee", "e@e")
	_, body = c.get("/employee/bills")
	if !strings.Contains(body, `data-testid="loading"`) {
		t.Errorf("bills page should start loading:\n%s", body)
	}
}

// ---------------------------------------------------------------------------
// New bill flow
// ---------------------------------------------------------------------------

var billURL = regexp.MustCompile(`data-bill-url="(/receipts/[^"]+)"`)

func TestNewBillFlow(t *testing.T) {
	c := newClient(t, newServer(t))
	c.login("Employee", "employee@test.tld")
	c.get("/employee/bill/new")

	resp, body := c.upload("facture.pdf", []byte("%PDF"))
	if !strings.Contains(resp.Header.Get("HX-Trigger"), handlers.AlertEvent) {
		t.Error("bad extension should raise an alert")
	}
	if !strings.Contains(body, "required ") {
		t.Error("file input should stay required after a rejected file")
	}

	resp, body = c.upload("facture.jpg", []byte{0xff, 0xd8, 0xff, 0xe0})
	if resp.Header.Get("HX-Trigger") != "" {
		t.Errorf("accepted file raised %q", resp.Header.Get("HX-Trigger"))
	}
	if !strings.Contains(body, "facture.jpg") {
		t.Error("accepted file name not shown")
	}

	resp, _ = c.postForm("/employee/bill/new", hotelForm, true)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("HX-Redirect") != "/employee/bills" {
		t.Fatalf("submit: status %d redirect %q", resp.StatusCode, resp.Header.Get("HX-Redirect"))
	}

	_, body = c.get("/employee/bills/list")
	for _, want := range []string{"Hôtel à Paris", "4 Jan. 21", "149 €", "En attente"} {
		if !strings.Contains(body, want) {
			t.Errorf("bill list missing %q", want)
		}
	}

	m := billURL.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no receipt url in list:\n%s", body)
	}
	resp, receipt := c.get(m[1])
	if resp.StatusCode != http.StatusOK || receipt != string([]byte{0xff, 0xd8, 0xff, 0xe0}) {
		t.Errorf("receipt: status %d, %d bytes", resp.StatusCode, len(receipt))
	}

	_, modal := c.get("/employee/bills/receipt?url=" + url.QueryEscape(m[1]))
	if !strings.Contains(modal, `src="`+m[1]+`"`) {
		t.Errorf("receipt modal missing image:\n%s", modal)
	}

	resp, statement := c.get("/employee/bills/statement.pdf")
	if resp.Header.Get("Content-Type") != "application/pdf" || !strings.HasPrefix(statement, "%PDF") {
		t.Errorf("statement: content type %q", resp.Header.Get("Content-Type"))
	}
}

func TestChangeFile_TooLarge(t *testing.T) {
	c := newClient(t, newServerLimit(t, 1000))
	c.login("Employee", "e@e")
	c.get("/employee/bill/new")

	resp, body := c.upload("big.jpg", bytes.Repeat([]byte{0xff}, 5000))
	if !strings.Contains(resp.Header.Get("HX-Trigger"), handlers.AlertEvent) {
		t.Error("oversize receipt should raise an alert")
	}
	if !strings.Contains(body, "required ") || strings.Contains(body, "big.jpg") {
		t.Errorf("oversize receipt was kept:\n%s", body)
	}
	if resp, _ := c.postForm("/employee/bill/new", hotelForm, true); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("submit after oversize receipt status = %d, want 422", resp.StatusCode)
	}

	resp, body = c.upload("small.jpg", bytes.Repeat([]byte{0xff}, 1000))
	if resp.Header.Get("HX-Trigger") != "" || !strings.Contains(body, "small.jpg") {
		t.Errorf("receipt at the limit rejected: trigger %q", resp.Header.Get("HX-Trigger"))
	}
}

func TestSubmitWithoutReceipt(t *testing.T) {
	c := newClient(t, newServer(t))
	c.login("Employee", "e@e")
	c.get("/employee/bill/new")

	resp, _ := c.postForm("/employee/bill/new", hotelForm, true)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if resp.Header.Get("HX-Redirect") != "" {
		t.Error("blocked submit navigated")
	}
	if !strings.Contains(resp.Header.Get("HX-Trigger"), handlers.AlertEvent) {
		t.Error("blocked submit did not alert")
	}
}

func TestReceiptNotFound(t *testing.T) {
	c := newClient(t, newServer(t))
	c.login("Employee", "e@e")
	if resp, _ := c.get("/receipts/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestReceipt_OwnerOrAdmin(t *testing.T) {
	srv := newServer(t)
	alice := newClient(t, srv)
	submitHotel(t, alice, "alice@test.tld")
	_, list := alice.get("/employee/bills/list")
	m := billURL.FindStringSubmatch(list)
	if m == nil {
		t.Fatalf("no receipt url in list:\n%s", list)
	}

	mallory := newClient(t, srv)
	mallory.login("Employee", "mallory@test.tld")
	admin := newClient(t, srv)
	admin.login("Admin", "admin@test.tld")

	tests := []struct {
		name   string
		c      *client
		status int
	}{
		{"owner", alice, http.StatusOK},
		{"admin", admin, http.StatusOK},
		{"other employee", mallory, http.StatusNotFound},
		{"anonymous", newClient(t, srv), http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp, _ := tt.c.get(m[1]); resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.name, resp.StatusCode, tt.status)
		}
	}
}

func TestEditForeignBill(t *testing.T) {
	srv := newServer(t)
	alice := newClient(t, srv)
	submitHotel(t, alice, "alice@test.tld")

	admin := newClient(t, srv)
	admin.login("Admin", "admin@test.tld")
	_, dash := admin.get("/admin/dashboard")
	m := regexp.MustCompile(`data-testid="open-bill([^"]+)"`).FindStringSubmatch(dash)
	if m == nil {
		t.Fatalf("no pending bill on dashboard:\n%s", dash)
	}
	id := m[1]

	mallory := newClient(t, srv)
	mallory.login("Employee", "mallory@test.tld")
	if resp, _ := mallory.get("/employee/bill/" + id + "/edit"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("edit status = %d, want 404", resp.StatusCode)
	}
	form := url.Values{}
	for k, v := range hotelForm {
		form[k] = v
	}
	form.Set("expense-name", "Détourné")
	if resp, _ := mallory.postForm("/employee/bill/new", form, true); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("submit status = %d, want 422", resp.StatusCode)
	}

	_, list := alice.get("/employee/bills/list")
	if !strings.Contains(list, "Hôtel à Paris") || strings.Contains(list, "Détourné") {
		t.Errorf("alice's bill was changed:\n%s", list)
	}
	if _, list := mallory.get("/employee/bills/list"); strings.Contains(list, "Hôtel à Paris") {
		t.Error("mallory lists alice's bill")
	}

	if resp, _ := admin.get("/employee/bill/" + id + "/edit"); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin edit status = %d", resp.StatusCode)
	}
	admin.postForm("/employee/bill/new", form, true)
	_, list = alice.get("/employee/bills/list")
	if !strings.Contains(list, "Détourné") {
		t.Errorf("admin edit did not stay with alice:\n%s", list)
	}
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

func TestDashboardReview(t *testing.T) {
	srv := newServer(t)
	emp := newClient(t, srv)
	emp.login("Employee", "employee@test.tld")
	emp.get("/employee/bill/new")
	emp.upload("facture.png", []byte("png"))
	emp.postForm("/employee/bill/new", hotelForm, true)

	if _, body := emp.get("/admin/dashboard"); strings.Contains(body, "status-bills-container") {
		t.Error("employee reached the dashboard")
	}

	admin := newClient(t, srv)
	admin.login("Admin", "admin@test.tld")
	_, body := admin.get("/admin/dashboard")
	m := regexp.MustCompile(`data-testid="open-bill([^"]+)"`).FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no pending bill on dashboard:\n%s", body)
	}
	id := m[1]

	if resp, _ := emp.postForm("/admin/bills/"+id+"/accept", url.Values{}, true); resp.StatusCode != http.StatusForbidden {
		t.Errorf("employee review status = %d, want 403", resp.StatusCode)
	}

	_, form := admin.get("/admin/bills/" + id)
	if !strings.Contains(form, "/admin/bills/"+id+"/accept") {
		t.Errorf("review form missing accept:\n%s", form)
	}

	resp, _ := admin.postForm("/admin/bills/"+id+"/refuse", url.Values{"commentAdmin": {"pas de justificatif lisible"}}, true)
	if resp.Header.Get("HX-Redirect") != "/admin/dashboard" {
		t.Errorf("refuse redirect = %q", resp.Header.Get("HX-Redirect"))
	}
	_, form = admin.get("/admin/bills/" + id)
	if !strings.Contains(form, "pas de justificatif lisible") || strings.Contains(form, "/accept") {
		t.Errorf("refused bill form:\n%s", form)
	}

	_, list := emp.get("/employee/bills/list")
	if !strings.Contains(list, "Refused") {
		t.Errorf("employee list should show the refusal:\n%s", list)
	}

	if resp, _ := admin.get("/admin/bills/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing bill status = %d, want 404", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	c := newClient(t, newServer(t))
	c.get("/")
	_, body := c.get("/metrics")
	if !strings.Contains(body, "billed_http_request_duration_seconds") {
		t.Error("request histogram not exposed")
	}
}
