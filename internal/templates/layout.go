package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/domain"
)

var layoutTmpl = template.Must(template.New("layout").Funcs(funcs).Parse(`
{{define "page"}}<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Billed</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<style>
  :root { --ink:#1b2330; --paper:#f4f6f9; --brand:#0e5ae5; --muted:#6b7280; --rule:#d8dde6; }
  * { box-sizing:border-box; }
  body { margin:0; background:var(--paper); color:var(--ink); font-family:'Roboto',sans-serif; }
  .layout { display:flex; min-height:100vh; }
  .vertical-navbar { width:120px; background:var(--ink); color:white; display:flex; flex-direction:column; align-items:center; padding-top:24px; gap:28px; }
  .layout-title { font-weight:700; font-size:1.2rem; }
  .vertical-navbar a { color:#9aa4b2; text-decoration:none; font-size:1.6rem; }
  .active-icon, .active-icon a { color:white; }
  .content { flex:1; padding:32px; }
  .content-header { display:flex; justify-content:space-between; align-items:center; margin-bottom:24px; }
  .content-title { font-size:1.6rem; font-weight:500; }
  .btn { border:none; padding:10px 18px; cursor:pointer; font-size:0.9rem; }
  .btn-primary { background:var(--brand); color:white; }
  table { width:100%; border-collapse:collapse; background:white; }
  th, td { padding:10px 12px; border-bottom:1px solid var(--rule); text-align:left; }
  .modal { position:fixed; inset:0; background:rgba(0,0,0,0.5); display:flex; align-items:center; justify-content:center; }
  .modal-content { background:white; padding:16px; max-width:720px; }
  .modal-content img { max-width:100%; }
</style>
</head>
<body>
<div id="root">{{.}}</div>
<div id="modal-slot"></div>
<script>
  document.body.addEventListener("billed:alert", function (e) { window.alert(e.detail.message); });
</script>
</body>
</html>
{{end}}

{{define "vertical-layout"}}
<div class="layout">
  <div class="vertical-navbar" data-testid="vertical-navbar">
    <div class="layout-title">Billed</div>
    {{if .Employee}}
    <div id="layout-icon1" data-testid="icon-window"{{if .BillsActive}} class="active-icon"{{end}}>
      <a href="/employee/bills" title="Mes notes de frais">&#128464;</a>
    </div>
    <div id="layout-icon2" data-testid="icon-mail"{{if .NewBillActive}} class="active-icon"{{end}}>
      <a href="/employee/bill/new" title="Nouvelle note de frais">&#9993;</a>
    </div>
    {{end}}
    <div id="layout-disconnect" data-testid="layout-disconnect">
      <a href="/logout" title="Se déconnecter">&#9211;</a>
    </div>
  </div>
  <div class="content">{{.Content}}</div>
</div>
{{end}}
`))

// Page renders the full HTML document with content mounted in #root.
// A nil content renders an empty root.
func Page(content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		inner, err := toHTML(ctx, content)
		if err != nil {
			return err
		}
		return layoutTmpl.ExecuteTemplate(w, "page", inner)
	})
}

type verticalLayoutData struct {
	Employee      bool
	BillsActive   bool
	NewBillActive bool
	Content       template.HTML
}

// VerticalLayout wraps content with the navigation bar. The icon of the
// active route carries the active-icon class; every other icon is cleared.
// Employee icons are only shown to employees.
func VerticalLayout(user domain.StoredUser, active domain.Route, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		inner, err := toHTML(ctx, content)
		if err != nil {
			return err
		}
		return layoutTmpl.ExecuteTemplate(w, "vertical-layout", verticalLayoutData{
			Employee:      user.Type == domain.UserEmployee,
			BillsActive:   active == domain.RouteBills,
			NewBillActive: active == domain.RouteNewBill,
			Content:       inner,
		})
	})
}
