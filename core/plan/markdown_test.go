package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const paragraph = `</p><p style="margin: 12px 0; line-height: 1.8;">`

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"h1", "# Plano", `<h1 style="color: #0056b3; font-size: 24px; margin-bottom: 15px;">Plano</h1>`},
		{"h2", "## Acolhida", `<h2 style="color: #0056b3; margin-top: 28px; font-size: 20px; border-bottom: 2px solid #0056b3; padding-bottom: 8px;">Acolhida</h2>`},
		{"h3", "### Passo", `<h3 style="color: #0056b3; margin-top: 20px; font-size: 16px;">Passo</h3>`},
		{"emphasis", "**forte** e *leve*", "<strong>forte</strong> e <em>leve</em>"},
		{"bullet", "- papel", `<li style="margin: 6px 0; margin-left: 20px;">papel</li>`},
		{"numbered", "12. passo", `<li style="margin: 8px 0; margin-left: 20px; list-style-type: decimal;">passo</li>`},
		{"line break", "a\nb", "a<br>b"},
		{"paragraph", "a\n\nb", "a" + paragraph + "b"},
		{"heading inside a line is kept", "nota # 1", "nota # 1"},
		{"plain", "texto simples", "texto simples"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkdownToHTML(tt.md))
		})
	}
}

func TestMarkdownToHTML_Document(t *testing.T) {
	md := "# T\n\n- a\n1. b"
	want := `<h1 style="color: #0056b3; font-size: 24px; margin-bottom: 15px;">T</h1>` + paragraph +
		`<li style="margin: 6px 0; margin-left: 20px;">a</li><br>` +
		`<li style="margin: 8px 0; margin-left: 20px; list-style-type: decimal;">b</li>`

	got := MarkdownToHTML(md)
	assert.Equal(t, want, got)
	assert.Equal(t, got, MarkdownToHTML(md))
}
