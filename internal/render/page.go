package render

import (
	"bytes"
	"html/template"
	"net/url"

	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/pkg/dashboard"
)

// PageData is the model for the dashboard HTML page.
type PageData struct {
	Title     string
	Selection dashboard.Selection
	Options   dashboard.Options
	Stats     dashboard.Stats
	Query     string
}

// pageTemplate is the dashboard page. Views load as images from the
// /view endpoints with the current selection carried in the query string;
// changing a filter submits the form and re-renders every view.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; background: #fafafa; }
h1 { font-size: 20px; }
form { margin-bottom: 16px; }
label { margin-right: 12px; font-size: 13px; }
.views { display: flex; flex-wrap: wrap; gap: 16px; }
.views img { background: #fff; border: 1px solid #ddd; }
.summary { font-size: 13px; color: #444; margin-bottom: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form method="get" action="/">
<label>Classification
<select name="classification">
{{range .Options.Classifications}}<option value="{{.}}"{{if eq . $.Selection.Classification}} selected{{end}}>{{.}}</option>
{{end}}</select>
</label>
<label>Age band
<select name="ageBand">
{{range .Options.AgeBands}}<option value="{{.}}"{{if eq . $.Selection.AgeBand}} selected{{end}}>{{.}}</option>
{{end}}</select>
</label>
<label>County
<select name="county">
{{range .Options.Counties}}<option value="{{.}}"{{if eq . $.Selection.County}} selected{{end}}>{{.}}</option>
{{end}}</select>
</label>
<button type="submit">Apply</button>
</form>
<p class="summary">{{.Stats.Total}} records, {{.Stats.Matching}} matching ({{printf "%.1f" .Stats.Percent}}%)</p>
<div class="views">
<img src="/view/stats.svg?{{.Query}}" alt="summary">
<img src="/view/heatmap.svg?{{.Query}}" alt="age distribution heatmap">
<img src="/view/choropleth.svg?{{.Query}}" alt="county map">
<img src="/view/bars.svg?{{.Query}}" alt="top counties">
</div>
</body>
</html>
`))

// RenderPage produces the dashboard HTML page for one selection.
func RenderPage(title string, sel dashboard.Selection, options dashboard.Options, stats dashboard.Stats) ([]byte, error) {
	query := url.Values{}
	if sel.Classification != "" {
		query.Set("classification", sel.Classification)
	}
	if sel.AgeBand != "" {
		query.Set("ageBand", sel.AgeBand)
	}
	if sel.County != "" {
		query.Set("county", sel.County)
	}

	data := PageData{
		Title:     title,
		Selection: sel,
		Options:   options,
		Stats:     stats,
		Query:     query.Encode(),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, errhandling.NewRenderError(ErrCodeRenderFailed, "dashboard page render failed", err)
	}
	return buf.Bytes(), nil
}
