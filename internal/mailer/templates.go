package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names.
const (
	TemplateVerifyEmail        = "verify_email"
	TemplatePasswordReset      = "password_reset"
	TemplateModerationApproved = "moderation_approved"
	TemplateModerationRejected = "moderation_rejected"
	TemplateAccountStatus      = "account_status"
)

var subjects = map[string]string{
	TemplateVerifyEmail:        "Confirma tu correo en Empleos Inclusivos",
	TemplatePasswordReset:      "Restablece tu contraseña",
	TemplateModerationApproved: "Tu %s fue aprobada",
	TemplateModerationRejected: "Tu %s fue rechazada",
	TemplateAccountStatus:      "Cambio en el estado de tu cuenta",
}

var templates = template.Must(template.New("mail").Parse(`
{{define "verify_email"}}<p>Hola,</p>
<p>Confirma tu correo para activar tu cuenta:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>El enlace vence en {{.ValidFor}}.</p>{{end}}

{{define "password_reset"}}<p>Hola,</p>
<p>Recibimos una solicitud para restablecer tu contraseña:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>Si no fuiste tú, ignora este mensaje. El enlace vence en {{.ValidFor}}.</p>{{end}}

{{define "moderation_approved"}}<p>Hola,</p>
<p>Tu {{.Entity}} <strong>{{.Name}}</strong> fue aprobada y ya está visible en la plataforma.</p>
{{if .Notes}}<p>Comentarios: {{.Notes}}</p>{{end}}{{end}}

{{define "moderation_rejected"}}<p>Hola,</p>
<p>Tu {{.Entity}} <strong>{{.Name}}</strong> fue rechazada.</p>
<p>Motivo: {{.Reason}}</p>{{end}}

{{define "account_status"}}<p>Hola,</p>
<p>El estado de tu cuenta cambió a <strong>{{.Status}}</strong>.</p>
{{if .Reason}}<p>Motivo: {{.Reason}}</p>{{end}}{{end}}
`))

// Data fills a template. Unused fields are ignored.
type Data struct {
	Link     string
	ValidFor string
	Entity   string
	Name     string
	Notes    string
	Reason   string
	Status   string
}

// Render builds a Message for name addressed to to.
func Render(name string, to string, data Data) (Message, error) {
	subject, ok := subjects[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown mail template %q", name)
	}
	if name == TemplateModerationApproved || name == TemplateModerationRejected {
		subject = fmt.Sprintf(subject, data.Entity)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Message{To: []string{to}, Subject: subject, HTML: buf.String(), Template: name}, nil
}
