package handlers

import (
	"fmt"
	"time"
)

// sampleHTML returns the built-in test page, stamped with the given time.
func sampleHTML(now time.Time) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 2em; color: #222; }
  h1 { color: #2c3e50; border-bottom: 2px solid #2c3e50; padding-bottom: 0.3em; }
  table { border-collapse: collapse; margin-top: 1em; }
  td, th { border: 1px solid #bbb; padding: 6px 12px; }
  th { background: #ecf0f1; }
  .footer { margin-top: 2em; font-size: 0.8em; color: #888; }
</style>
</head>
<body>
<h1>PDF Rendering Test</h1>
<p>This document was rendered by the HTML to PDF service.</p>
<table>
  <tr><th>Property</th><th>Value</th></tr>
  <tr><td>Generated at</td><td>%s</td></tr>
  <tr><td>Paper format</td><td>A4 (default)</td></tr>
  <tr><td>Background graphics</td><td>enabled</td></tr>
</table>
<p class="footer">If you can read this as a PDF, the render pipeline works.</p>
</body>
</html>`, now.Format(time.RFC1123))
}
