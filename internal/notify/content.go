// Where: internal/notify/content.go
// What: HTML and plain-text bodies for notification emails.
// Why: Both mailers send the same layout with different messages.
package notify

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"sync"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
)

// ContactDetails is the data shown in a notification email.
type ContactDetails struct {
	Name    string
	Email   string
	Message string
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	loadOnce sync.Once
	loadErr  error
	htmlTmpl *htmltemplate.Template
	textTmpl *texttemplate.Template
)

func loadTemplates() error {
	loadOnce.Do(func() {
		htmlTmpl, loadErr = htmltemplate.New("message.html.tmpl").
			Funcs(sprig.HtmlFuncMap()).
			ParseFS(templateFS, "templates/message.html.tmpl")
		if loadErr != nil {
			return
		}
		textTmpl, loadErr = texttemplate.New("message.txt.tmpl").
			Funcs(sprig.TxtFuncMap()).
			ParseFS(templateFS, "templates/message.txt.tmpl")
	})
	return loadErr
}

// RenderHTML returns the HTML body. Details are escaped.
func RenderHTML(details ContactDetails) (string, error) {
	if err := loadTemplates(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, details); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderText returns the plain-text body.
func RenderText(details ContactDetails) (string, error) {
	if err := loadTemplates(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, details); err != nil {
		return "", err
	}
	return buf.String(), nil
}
