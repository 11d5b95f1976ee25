package core

import (
	htmltmpl "html/template"
	"net/mail"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/oinstituto/atlas/fs"
)

func TestEmailMessage_Render(t *testing.T) {
	msg := EmailMessage{
		To:           []mail.Address{{Name: "Ana", Address: "ana@escola.com"}},
		Subject:      "Plano",
		TemplateName: "plan",
		TemplateData: map[string]interface{}{
			"Name":         "Ana",
			"PlanHTML":     htmltmpl.HTML("<h1>Plano</h1>"),
			"PlanMarkdown": "# Plano",
		},
	}
	require.NoError(t, msg.Render())
	assert.Contains(t, msg.HTMLContent, "<strong>Ana</strong>")
	assert.Contains(t, msg.HTMLContent, "<h1>Plano</h1>")
	assert.Contains(t, msg.TextContent, "Olá, Ana!")
	assert.Contains(t, msg.TextContent, "# Plano")
	assert.NoError(t, msg.Check())

	missing := EmailMessage{TemplateName: "welcome"}
	assert.Error(t, missing.Render())
}

func TestEmailMessage_Check(t *testing.T) {
	to := []mail.Address{{Address: "ana@escola.com"}}
	tests := []struct {
		name string
		msg  EmailMessage
		want error
	}{
		{"no recipients", EmailMessage{BodyStr: "oi"}, ErrNoRecipients},
		{"no content", EmailMessage{To: to}, ErrNoContent},
		{"plain body", EmailMessage{To: to, BodyStr: "oi"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			require.NoError(t, msg.Render())
			assert.Equal(t, tt.want, msg.Check())
		})
	}
}

func TestParseTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/email/_base.txt":    {Data: []byte(`[{{template "content" .}}]`)},
		"templates/email/hello.txt":    {Data: []byte(`{{define "content"}}oi {{.Name}}{{end}}`)},
		"templates/email/_base.gohtml": {Data: []byte(`<p>{{template "content" .}}</p>`)},
		"templates/email/hello.gohtml": {Data: []byte(`{{define "content"}}<b>{{.Name}}</b>{{end}}`)},
		"templates/email/textonly.txt": {Data: []byte(`{{define "content"}}só texto{{end}}`)},
		"templates/email/README.md":    {Data: []byte(`ignored`)},
	}
	cache, err := parseTemplates(fsys)
	require.NoError(t, err)
	require.Len(t, cache, 2)
	assert.NotNil(t, cache["hello"].html)
	assert.NotNil(t, cache["hello"].text)
	assert.Nil(t, cache["textonly"].html)

	msg := EmailMessage{TemplateData: map[string]string{"Name": "<Ana>"}}
	require.NoError(t, msg.renderText(cache["hello"]))
	require.NoError(t, msg.renderHTML(cache["hello"]))
	assert.Equal(t, "[oi <Ana>]", msg.TextContent)
	assert.Equal(t, "<p><b>&lt;Ana&gt;</b></p>", msg.HTMLContent)
}

func TestParseTemplates_Embedded(t *testing.T) {
	cache, err := parseTemplates(appfs.FS)
	require.NoError(t, err)
	require.Contains(t, cache, "plan")
	assert.NotNil(t, cache["plan"].text)
	assert.NotNil(t, cache["plan"].html)
	assert.NotNil(t, cache["plan"].html.Lookup("header"), "base layout must be embedded")

	msg := EmailMessage{TemplateData: map[string]interface{}{
		"Name":         "Ana",
		"PlanHTML":     htmltmpl.HTML("<h2>Objetivo</h2>"),
		"PlanMarkdown": "## Objetivo",
	}}
	require.NoError(t, msg.renderText(cache["plan"]))
	require.NoError(t, msg.renderHTML(cache["plan"]))
	assert.Contains(t, msg.TextContent, "Agente de Inovação Pedagógica")
	assert.Contains(t, msg.HTMLContent, "<title>Seu Plano de Aula Inovador</title>")
	assert.Contains(t, msg.HTMLContent, "<h2>Objetivo</h2>")
}
