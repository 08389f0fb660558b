package widget

import (
	"bytes"
	"html/template"
	"io"
)

var widgetTmpl = template.Must(template.New("widget").Parse(`<div class="chat-widget">
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
<h3>Question:</h3>
<p>{{.Prompt}}</p>
{{- if .Response}}
<h3>Response:</h3>
<p>{{.Response}}</p>
{{- end}}
<button type="button" data-action="send"{{if .Disabled}} disabled{{end}}>{{.Label}}</button>
</div>`))

type renderData struct {
	Prompt   string
	Response string
	Error    string
	Label    string
	Disabled bool
}

// Render writes the widget markup for state.
func Render(w io.Writer, prompt string, state State) error {
	view := View(state)
	label, disabled := ButtonLabel(view.Response != "", view.IsLoading)

	return widgetTmpl.Execute(w, renderData{
		Prompt:   prompt,
		Response: view.Response,
		Error:    view.Error,
		Label:    label,
		Disabled: disabled,
	})
}

func RenderString(prompt string, state State) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, prompt, state); err != nil {
		return "", err
	}
	return buf.String(), nil
}
