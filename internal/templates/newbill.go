package templates

import (
	"html/template"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/domain"
)

// FileField is the state of the receipt input shown in the new-bill form.
type FileField struct {
	// FileName is the name of the receipt currently held, if any.
	FileName string
}

var newBillTmpl = template.Must(template.New("new-bill").Funcs(funcs).Parse(`
{{define "new-bill-ui"}}
<div class="content-header">
  <div class="content-title">Envoyer une note de frais</div>
</div>
<div class="form-newbill-container content-inner">
  <form data-testid="form-new-bill" hx-post="/employee/bill/new" hx-swap="none">
    <div class="row">
      <div class="col-md-6">
        <div class="col-half">
          <label for="expense-type" class="bold-label">Type de dépense</label>
          <select required class="form-control blue-border" name="expense-type" data-testid="expense-type">
            {{range .ExpenseTypes}}<option{{if eq . $.Bill.Type}} selected{{end}}>{{.}}</option>{{end}}
          </select>
        </div>
        <div class="col-half">
          <label for="expense-name" class="bold-label">Nom de la dépense</label>
          <input type="text" class="form-control blue-border" name="expense-name" data-testid="expense-name" placeholder="Vol Paris Londres" value="{{.Bill.Name}}">
        </div>
        <div class="col-half">
          <label for="datepicker" class="bold-label">Date</label>
          <input required type="date" class="form-control blue-border" name="datepicker" data-testid="datepicker" value="{{.Bill.Date}}">
        </div>
        <div class="col-half">
          <label for="amount" class="bold-label">Montant TTC</label>
          <input required type="number" step="0.01" class="form-control blue-border input-icon input-icon-right" name="amount" data-testid="amount" placeholder="348"{{if .Bill.Amount}} value="{{.Bill.Amount}}"{{end}}>
        </div>
        <div class="col-half-row">
          <div class="flex-col">
            <label for="vat" class="bold-label">TVA</label>
            <input type="number" class="form-control blue-border" name="vat" data-testid="vat" placeholder="70" value="{{.Bill.VAT}}">
          </div>
          <div class="flex-col">
            <input required type="number" class="form-control blue-border" name="pct" data-testid="pct" placeholder="20"{{if .Bill.Pct}} value="{{.Bill.Pct}}"{{end}}>
          </div>
        </div>
      </div>
      <div class="col-md-6">
        <div class="col-half">
          <label for="commentary" class="bold-label">Commentaire</label>
          <textarea class="form-control blue-border" name="commentary" data-testid="commentary" rows="3">{{.Bill.Commentary}}</textarea>
        </div>
        <div class="col-half">
          <label for="file" class="bold-label">Justificatif</label>
          {{template "file-field" .File}}
        </div>
      </div>
    </div>
    <div class="row">
      <div class="col-md-6">
        <div class="col-half">
          <button type="submit" id="btn-send-bill" class="btn btn-primary">Envoyer</button>
        </div>
      </div>
    </div>
  </form>
</div>
{{end}}

{{define "file-field"}}
<div id="file-field">
  <input {{if not .FileName}}required {{end}}type="file" accept=".jpg,.jpeg,.png" class="form-control blue-border" name="file" data-testid="file"
    hx-post="/employee/bill/new/file" hx-encoding="multipart/form-data" hx-trigger="change"
    hx-target="#file-field" hx-swap="outerHTML">
  {{if .FileName}}<div class="file-name" data-testid="file-name">{{.FileName}}</div>{{end}}
</div>
{{end}}
`))

type newBillData struct {
	ExpenseTypes []string
	Bill         domain.Bill
	File         FileField
}

// NewBillUI renders the new-bill form. Fields are prefilled from bill, which
// is the zero Bill for a new expense.
func NewBillUI(bill domain.Bill, file FileField) templ.Component {
	return component(newBillTmpl, "new-bill-ui", newBillData{
		ExpenseTypes: domain.ExpenseTypes,
		Bill:         bill,
		File:         file,
	})
}

// FileFieldUI renders only the receipt input. It is swapped in after every
// file selection, which also clears the input's value.
func FileFieldUI(file FileField) templ.Component {
	return component(newBillTmpl, "file-field", file)
}
