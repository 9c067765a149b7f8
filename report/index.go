package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Figure is one report panel.
type Figure struct {
	File    string
	Caption string
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 1150px; margin: 2em auto; }
figure { margin: 2em 0; }
figcaption { color: #555; font-size: .9em; margin-top: .4em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: .3em .7em; text-align: right; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range $i, $f := .Figures}}
<figure>
<img src="{{$f.File}}" alt="{{$f.Caption}}">
<figcaption>Figure {{inc $i}}: {{$f.Caption}}</figcaption>
</figure>
{{end}}
{{if .Skill}}
<h2>Reanalysis skill at the gauges</h2>
<table>
<tr><th>gauge</th><th>n</th><th>NSE</th><th>KGE</th><th>RMSE</th><th>bias</th><th>anomaly [m³/s]</th></tr>
{{range .Skill}}
<tr><td style="text-align:left">{{.Name}}</td><td>{{.N}}</td><td>{{printf "%.3f" .NSE}}</td><td>{{printf "%.3f" .KGE}}</td><td>{{printf "%.1f" .RMSE}}</td><td>{{printf "%.3f" .Bias}}</td><td>{{printf "%.1f" .Anom}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// SkillRow is a rendered gauge-validation line. Anom is the event-year
// mean departure from the day-of-year median discharge [m³/s].
type SkillRow struct {
	Name                 string
	N                    int
	NSE, KGE, RMSE, Bias float64
	Anom                 float64
}

// Index data for the rendered report page.
type Index struct {
	Title   string
	Figures []Figure
	Skill   []SkillRow
}

// WriteIndex renders index.html into dir.
func WriteIndex(dir string, idx Index) error {
	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("report: %v", err)
	}
	if err := indexTmpl.Execute(f, idx); err != nil {
		f.Close()
		return fmt.Errorf("report: index: %v", err)
	}
	return f.Close()
}
