package templates

import (
	"html/template"

	"github.com/a-h/templ"
)

// ReceiptUnavailable is shown in the receipt dialog when the bill has no
// usable receipt URL.
const ReceiptUnavailable = "Justificatif indisponible"

var modalTmpl = template.Must(template.New("modal").Parse(`
{{define "receipt-modal"}}
<div class="modal" id="modaleFile" role="dialog" data-testid="modal-file"
  hx-on:click="if (event.target === this) this.remove()">
  <div class="modal-content">
    <div class="modal-header">
      <h5 class="modal-title">Justificatif</h5>
      <button type="button" class="close" data-testid="modal-close"
        hx-on:click="document.getElementById('modaleFile').remove()">&times;</button>
    </div>
    <div class="modal-body bill-proof-container">
      {{if .URL}}
      <img width="{{.Width}}" src="{{.URL}}" alt="Bill" data-testid="receipt-image">
      {{else}}
      <div class="receipt-placeholder" data-testid="receipt-placeholder">{{.Placeholder}}</div>
      {{end}}
    </div>
  </div>
</div>
{{end}}
`))

type receiptModalData struct {
	URL         string
	Width       int
	Placeholder string
}

// ReceiptModal renders the receipt dialog. An empty url renders the
// placeholder instead of the image.
func ReceiptModal(url string, width int) templ.Component {
	return component(modalTmpl, "receipt-modal", receiptModalData{
		URL:         url,
		Width:       width,
		Placeholder: ReceiptUnavailable,
	})
}
