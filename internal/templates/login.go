package templates

import (
	"html/template"

	"github.com/a-h/templ"
)

var loginTmpl = template.Must(template.New("login").Parse(`
{{define "login-ui"}}
<div class="login-page">
  <div class="login-title"><h1>Billed</h1></div>
  <div class="login-forms">
    <div class="login-form">
      <h2>Employé</h2>
      <h3>Veuillez vous connecter</h3>
      <form data-testid="form-employee" hx-post="/login" hx-swap="none">
        <input type="hidden" name="type" value="Employee">
        <label for="employee-email-input">Votre email</label>
        <input required type="email" name="email" data-testid="employee-email-input" placeholder="johndoe@email.com">
        <button type="submit" class="btn btn-primary" data-testid="employee-login-button">Se connecter</button>
      </form>
    </div>
    <div class="login-form">
      <h2>Administration</h2>
      <h3>Veuillez vous connecter</h3>
      <form data-testid="form-admin" hx-post="/login" hx-swap="none">
        <input type="hidden" name="type" value="Admin">
        <label for="admin-email-input">Votre email</label>
        <input required type="email" name="email" data-testid="admin-email-input" placeholder="johndoe@email.com">
        <button type="submit" class="btn btn-primary" data-testid="admin-login-button">Se connecter</button>
      </form>
    </div>
  </div>
</div>
{{end}}
`))

// LoginUI renders the employee and admin login forms.
func LoginUI() templ.Component {
	return component(loginTmpl, "login-ui", nil)
}
