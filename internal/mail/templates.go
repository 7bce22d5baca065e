package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Template names accepted by Render.
const (
	TemplateWelcome    = "welcome"
	TemplateLoginAlert = "login_alert"
	TemplateNewPost    = "new_post"
	TemplateDigest     = "digest"
)

type templatePair struct {
	subject string
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

var templates = map[string]templatePair{
	TemplateWelcome: {
		subject: "Welcome to Inkpress",
		html: htmltemplate.Must(htmltemplate.New(TemplateWelcome).Parse(
			`<p>Hi {{.Name}},</p><p>Your Inkpress account is ready. <a href="{{.SiteURL}}">Start reading</a>.</p>`)),
		text: texttemplate.Must(texttemplate.New(TemplateWelcome).Parse(
			"Hi {{.Name}},\n\nYour Inkpress account is ready. Start reading at {{.SiteURL}}\n")),
	},
	TemplateLoginAlert: {
		subject: "New sign-in to your Inkpress account",
		html: htmltemplate.Must(htmltemplate.New(TemplateLoginAlert).Parse(
			`<p>Hi {{.Name}},</p><p>We noticed a sign-in to your account{{if .IP}} from {{.IP}}{{end}} at {{.At}}.</p><p>If this wasn't you, change your password.</p>`)),
		text: texttemplate.Must(texttemplate.New(TemplateLoginAlert).Parse(
			"Hi {{.Name}},\n\nWe noticed a sign-in to your account{{if .IP}} from {{.IP}}{{end}} at {{.At}}.\nIf this wasn't you, change your password.\n")),
	},
	TemplateNewPost: {
		subject: "New on Inkpress",
		html: htmltemplate.Must(htmltemplate.New(TemplateNewPost).Parse(
			`<p>Hi {{.Name}},</p><p>{{.Author}} just published <a href="{{.PostURL}}">{{.Title}}</a>.</p>`)),
		text: texttemplate.Must(texttemplate.New(TemplateNewPost).Parse(
			"Hi {{.Name}},\n\n{{.Author}} just published \"{{.Title}}\": {{.PostURL}}\n")),
	},
	TemplateDigest: {
		subject: "Your weekly Inkpress digest",
		html: htmltemplate.Must(htmltemplate.New(TemplateDigest).Parse(
			`<p>Hi {{.Name}},</p><p>Trending this week:</p><ul>{{range .Posts}}<li><a href="{{.URL}}">{{.Title}}</a> ({{.Views}} views)</li>{{end}}</ul>`)),
		text: texttemplate.Must(texttemplate.New(TemplateDigest).Parse(
			"Hi {{.Name}},\n\nTrending this week:\n{{range .Posts}}- {{.Title}} ({{.Views}} views) {{.URL}}\n{{end}}")),
	},
}

// Render executes the named template with data and returns the subject and both bodies.
func Render(name string, data interface{}) (subject, html, text string, err error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown mail template %q", name)
	}
	var hb, tb bytes.Buffer
	if err := tpl.html.Execute(&hb, data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	if err := tpl.text.Execute(&tb, data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	return tpl.subject, hb.String(), tb.String(), nil
}
