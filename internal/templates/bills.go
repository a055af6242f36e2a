package templates

import (
	"html/template"
	"slices"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/dates"
	"github.com/csg33k/billed/internal/domain"
)

// BillRow is one line of the bills table. Date is the display string,
// ISODate the original value used for ordering.
type BillRow struct {
	ID       string
	Type     string
	Name     string
	Date     string
	ISODate  string
	Amount   float64
	Status   domain.BillStatus
	FileURL  string
	FileName string
}

// NewBillRow maps a stored bill to its table row.
func NewBillRow(b domain.Bill) BillRow {
	return BillRow{
		ID:       b.ID,
		Type:     b.Type,
		Name:     b.Name,
		Date:     dates.FormatDate(b.Date),
		ISODate:  b.Date,
		Amount:   b.Amount,
		Status:   b.Status,
		FileURL:  b.FileURL,
		FileName: b.FileName,
	}
}

// BillsPage is the input of BillsUI.
type BillsPage struct {
	Bills   []BillRow
	Loading bool
	Error   string
}

var billsTmpl = template.Must(template.New("bills").Funcs(funcs).Parse(`
{{define "bills-ui"}}
<div id="bills-content"{{if .Loading}} hx-get="/employee/bills/list" hx-trigger="load" hx-swap="outerHTML"{{end}}>
  <div class="content-header">
    <div class="content-title">Mes notes de frais</div>
    <button type="button" data-testid="btn-new-bill" class="btn btn-primary"
      hx-post="/employee/bills/new">Nouvelle note de frais</button>
  </div>
  {{if .Loading}}
  <div id="loading" data-testid="loading">Loading...</div>
  {{else if .Error}}
  <div id="error-page" data-testid="error-page">
    <div class="error-title">Erreur</div>
    <div data-testid="error-message">{{.Error}}</div>
  </div>
  {{else}}
  <table id="example" class="table">
    <thead>
      <tr>
        <th>Type</th>
        <th>Nom</th>
        <th>Date</th>
        <th>Montant</th>
        <th>Statut</th>
        <th>Actions</th>
      </tr>
    </thead>
    <tbody data-testid="tbody">
      {{range .Bills}}
      <tr data-testid="bill-row">
        <td>{{.Type}}</td>
        <td data-testid="bill-name">{{.Name}}</td>
        <td data-testid="bill-date" data-iso="{{.ISODate}}">{{.Date}}</td>
        <td data-testid="bill-amount">{{amount .Amount}}</td>
        <td data-testid="bill-status">{{status .Status}}</td>
        <td>
          <div data-testid="icon-eye" class="icon-eye" data-bill-url="{{.FileURL}}"
            hx-get="/employee/bills/receipt?url={{query .FileURL}}" hx-target="#modal-slot">&#128065;</div>
        </td>
      </tr>
      {{end}}
    </tbody>
  </table>
  {{end}}
</div>
{{end}}
`))

// BillsUI renders the employee's bills page. Loading and Error replace the
// table; the title and the new-bill button are always present. Rows are
// ordered latest date first whatever the order of p.Bills.
func BillsUI(p BillsPage) templ.Component {
	rows := slices.Clone(p.Bills)
	dates.SortDescending(rows, func(r BillRow) string { return r.ISODate })
	p.Bills = rows
	return component(billsTmpl, "bills-ui", p)
}
