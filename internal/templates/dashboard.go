package templates

import (
	"html/template"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/dates"
	"github.com/csg33k/billed/internal/domain"
)

// StatusGroup is one collapsible list of the admin dashboard.
type StatusGroup struct {
	Index  int
	Status domain.BillStatus
	Cards  []BillCard
}

// BillCard is a bill as shown in a dashboard list.
type BillCard struct {
	ID     string
	Email  string
	Name   string
	Date   string
	Amount float64
	Type   string
}

// NewBillCard maps a stored bill to its dashboard card.
func NewBillCard(b domain.Bill) BillCard {
	return BillCard{
		ID:     b.ID,
		Email:  b.Email,
		Name:   b.Name,
		Date:   dates.FormatDate(b.Date),
		Amount: b.Amount,
		Type:   b.Type,
	}
}

// DashboardPage is the input of DashboardUI.
type DashboardPage struct {
	Groups  []StatusGroup
	Loading bool
	Error   string
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(funcs).Parse(`
{{define "dashboard-ui"}}
<div class="dashboard-content">
  <div class="dashboard-left-container">
    {{if .Loading}}
    <div id="loading" data-testid="loading">Loading...</div>
    {{else if .Error}}
    <div id="error-page" data-testid="error-page">
      <div class="error-title">Erreur</div>
      <div data-testid="error-message">{{.Error}}</div>
    </div>
    {{else}}
    {{range .Groups}}
    <div class="status-bills-header" id="status-bills-header{{.Index}}">
      <h3>{{status .Status}}</h3>
    </div>
    <div id="status-bills-container{{.Index}}" data-testid="status-bills-container{{.Index}}">
      {{range .Cards}}
      <div class="bill-card" id="open-bill{{.ID}}" data-testid="open-bill{{.ID}}"
        hx-get="/admin/bills/{{.ID}}" hx-target="#dashboard-right">
        <div class="bill-card-name-container">
          <div class="bill-card-name">{{.Email}}</div>
          <span class="bill-card-grey">... </span>
        </div>
        <div class="name-price-container">
          <span>{{.Name}}</span>
          <span>{{amount .Amount}}</span>
        </div>
        <div class="date-type-container">
          <span>{{.Date}}</span>
          <span>{{.Type}}</span>
        </div>
      </div>
      {{end}}
    </div>
    {{end}}
    {{end}}
  </div>
  <div class="dashboard-right-container" id="dashboard-right">
    <div class="big-billed-icon" data-testid="big-billed-icon">Billed</div>
  </div>
</div>
{{end}}

{{define "dashboard-form-ui"}}
<div class="container dashboard-form" data-testid="dashboard-form">
  <div class="row">
    <div class="col-sm" id="dashboard-form-col1">
      <label class="bold-label">Type de dépense</label>
      <div class="input-field">{{.Bill.Type}}</div>
      <label class="bold-label">Nom de la dépense</label>
      <div class="input-field">{{.Bill.Name}}</div>
      <label class="bold-label">Date</label>
      <div class="input-field">{{.Date}}</div>
      <label class="bold-label">Montant TTC</label>
      <div class="input-field">{{amount .Bill.Amount}}</div>
      <label class="bold-label">TVA</label>
      <div class="input-flex">
        <div class="input-field">{{.Bill.VAT}}</div>
        <div class="input-field">{{.Bill.Pct}} %</div>
      </div>
    </div>
    <div class="col-sm" id="dashboard-form-col2">
      <label class="bold-label">Commentaire</label>
      <div class="textarea-field">{{.Bill.Commentary}}</div>
      <label class="bold-label">Justificatif</label>
      <div class="input-field input-flex file-flex">
        <span id="file-name-admin">{{.Bill.FileName}}</span>
        <div class="icons-container">
          <span id="icon-eye-d" data-testid="icon-eye-d" data-bill-url="{{.Bill.FileURL}}"
            hx-get="/admin/bills/receipt?url={{query .Bill.FileURL}}" hx-target="#modal-slot">&#128065;</span>
        </div>
      </div>
    </div>
  </div>
  {{if .Pending}}
  <form class="row" hx-target="#root" hx-swap="innerHTML">
    <div class="col-sm">
      <label for="commentary-admin" class="bold-label">Ajouter un commentaire</label>
      <textarea id="commentary2" class="form-control blue-border" name="commentAdmin" data-testid="commentary2" rows="5"></textarea>
    </div>
    <div class="buttons-flex">
      <button type="submit" id="btn-refuse-bill" data-testid="btn-refuse-bill-d" class="btn btn-primary"
        hx-post="/admin/bills/{{.Bill.ID}}/refuse">Refuser</button>
      <button type="submit" id="btn-accept-bill" data-testid="btn-accept-bill-d" class="btn btn-primary"
        hx-post="/admin/bills/{{.Bill.ID}}/accept">Accepter</button>
    </div>
  </form>
  {{else}}
  <div class="row">
    <label class="bold-label">Commentaire admin</label>
    <div class="input-field" data-testid="comment-admin">{{.Bill.CommentAdmin}}</div>
  </div>
  {{end}}
</div>
{{end}}
`))

// DashboardUI renders the admin dashboard with one list per status.
func DashboardUI(p DashboardPage) templ.Component {
	return component(dashboardTmpl, "dashboard-ui", p)
}

type dashboardFormData struct {
	Bill    domain.Bill
	Date    string
	Pending bool
}

// DashboardFormUI renders the detail of one bill for review. Only pending
// bills can be accepted or refused.
func DashboardFormUI(b domain.Bill) templ.Component {
	return component(dashboardTmpl, "dashboard-form-ui", dashboardFormData{
		Bill:    b,
		Date:    dates.FormatDate(b.Date),
		Pending: b.Status == domain.StatusPending,
	})
}
