package templates

import (
	"bytes"
	"embed"
	"fmt"
	texttpl "text/template"
)

//go:embed *.tmpl
var fs embed.FS

var tpls = texttpl.Must(texttpl.ParseFS(fs, "*.tmpl"))

// Subjects per template name.
var subjects = map[string]string{
	"account_approved": "Your account has been approved",
	"account_rejected": "Update on your account request",
	"recovery_code":    "Your password recovery code",
}

// Render renders the named template and returns subject and text body.
func Render(name string, data map[string]any) (subject, text string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tpls.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
