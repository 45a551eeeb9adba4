package report

import (
	"html/template"
	"io"
	"strings"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Folder Capacity Report</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 20px; background-color: #f4f4f9; }
.container { max-width: 1200px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
h1 { color: #333; }
.meta { margin-bottom: 20px; padding: 10px; background: #e9ecef; border-left: 5px solid #007bff; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { padding: 12px 15px; text-align: left; border-bottom: 1px solid #ddd; }
th { background-color: #007bff; color: white; }
tr:hover { background-color: #f1f1f1; }
.path-cell { display: flex; justify-content: space-between; align-items: center; }
.path-text { word-break: break-all; margin-right: 10px; font-family: Consolas, monospace; }
.copy-btn { background-color: #28a745; color: white; border: none; padding: 5px 10px; border-radius: 4px; cursor: pointer; font-size: 0.85em; }
.copy-btn:hover { background-color: #218838; }
</style>
<script>
function copyPath(path) {
  const windowsPath = path.replace(/\//g, '\\');
  navigator.clipboard.writeText(windowsPath).then(() => {
    alert("Path copied to clipboard:\n" + windowsPath);
  }).catch(err => {
    console.error('Failed to copy: ', err);
  });
}
</script>
</head>
<body>
<div class="container">
<h1>Folder Capacity Report</h1>
<div class="meta">
<p><strong>Generated:</strong> {{.Generated}}</p>
<p><strong>Mode:</strong> {{.Mode}}</p>
<p><strong>Criteria:</strong> {{.Horizon}} (Reference Date: {{.ReferenceDate}}) | Min Size: {{.SizeMB}} MB</p>
</div>
<table>
<thead>
<tr><th>Folder Path</th><th>Date ({{.TimestampLabel}})</th><th>Size</th></tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>
<td class="path-cell"><div class="path-text">{{.Path}}</div><button onclick="copyPath({{.CopyPath}})" class="copy-btn">Copy Path</button></td>
<td>{{.Date}}</td>
<td>{{.SizeLabel}}</td>
</tr>
{{- end}}
</tbody>
</table>
</div>
</body>
</html>
`))

type htmlRow struct {
	Row
	CopyPath string
}

type htmlPage struct {
	Generated      string
	Mode           string
	Horizon        string
	ReferenceDate  string
	SizeMB         int
	TimestampLabel string
	Rows           []htmlRow
}

func (r *Report) writeHTML(w io.Writer) error {
	h := r.Header
	page := htmlPage{
		Generated:      h.Generated.Format("02-01-2006 15:04"),
		Mode:           strings.ToUpper(h.Mode.String()),
		Horizon:        horizonLabel(h.Horizon),
		ReferenceDate:  h.ReferenceDate,
		SizeMB:         h.SizeMB,
		TimestampLabel: h.Mode.TimestampLabel(),
	}
	for _, row := range r.Rows {
		// The button converts to backslashes; start from one separator style.
		page.Rows = append(page.Rows, htmlRow{Row: row, CopyPath: strings.ReplaceAll(row.Path, `\`, "/")})
	}
	return htmlTemplate.Execute(w, page)
}
