package plan

import "regexp"

type substitution struct {
	re   *regexp.Regexp
	repl string
}

// The order matters: "###" before "##" before "#", "**" before "*".
var markdownSubstitutions = []substitution{
	{regexp.MustCompile(`(?im)^### (.*$)`), `<h3 style="color: #0056b3; margin-top: 20px; font-size: 16px;">$1</h3>`},
	{regexp.MustCompile(`(?im)^## (.*$)`), `<h2 style="color: #0056b3; margin-top: 28px; font-size: 20px; border-bottom: 2px solid #0056b3; padding-bottom: 8px;">$1</h2>`},
	{regexp.MustCompile(`(?im)^# (.*$)`), `<h1 style="color: #0056b3; font-size: 24px; margin-bottom: 15px;">$1</h1>`},
	{regexp.MustCompile(`(?i)\*\*(.*?)\*\*`), `<strong>$1</strong>`},
	{regexp.MustCompile(`(?i)\*(.*?)\*`), `<em>$1</em>`},
	{regexp.MustCompile(`(?im)^- (.*$)`), `<li style="margin: 6px 0; margin-left: 20px;">$1</li>`},
	{regexp.MustCompile(`(?im)^\d+\. (.*$)`), `<li style="margin: 8px 0; margin-left: 20px; list-style-type: decimal;">$1</li>`},
	{regexp.MustCompile(`\n\n`), `</p><p style="margin: 12px 0; line-height: 1.8;">`},
	{regexp.MustCompile(`\n`), `<br>`},
}

// MarkdownToHTML converts the subset of Markdown used by plans into inline-styled HTML.
// It is not a Markdown parser and does not escape its input.
func MarkdownToHTML(md string) string {
	html := md
	for _, sub := range markdownSubstitutions {
		html = sub.re.ReplaceAllString(html, sub.repl)
	}
	return html
}
