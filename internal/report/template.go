package report

// PageTemplate is the HTML template for the sentiment page.
// It is embedded as a Go constant — no external file dependencies.
const PageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --orange: #ea580c;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }
  .error { background: #fef2f2; color: var(--red); padding: 12px; border-radius: 4px; }
  table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
  th, td { padding: 6px 8px; border-bottom: 1px solid var(--border); text-align: right; }
  th:first-child, td:first-child, th:nth-child(2), td:nth-child(2) { text-align: left; }
  .Bullish { color: var(--green); font-weight: 600; }
  .Bearish { color: var(--red); font-weight: 600; }
  .Neutral { color: var(--orange); font-weight: 600; }
  .cards { display: flex; flex-wrap: wrap; gap: 16px; }
  .card { border: 1px solid var(--border); border-radius: 6px; padding: 12px; background: var(--section-bg); flex: 1 1 260px; }
  .card h3 { font-size: 1rem; margin-bottom: 6px; }
  .narrative { white-space: pre-wrap; font-size: 0.85rem; margin-top: 8px; }
  .footer { margin-top: 32px; font-size: 0.75rem; color: var(--muted); border-top: 1px solid var(--border); padding-top: 8px; }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">{{if .Timestamp}}Generated {{.Timestamp}} · {{end}}Market {{.MarketState}}</p>
</div>
{{if not .Success}}
<div class="error">Run failed: {{.Error}}</div>
{{else}}
<h2>Overview</h2>
<table>
  <tr><th>Ticker</th><th>Sentiment</th><th>Compound</th><th>Positive</th><th>Negative</th><th>Neutral</th><th>Headlines</th></tr>
  {{range .Tickers}}
  <tr>
    <td>{{.Ticker}}</td>
    <td class="{{.Label}}">{{.Label}}</td>
    <td>{{printf "%+.4f" .Compound}}</td>
    <td>{{printf "%.4f" .Positive}}</td>
    <td>{{printf "%.4f" .Negative}}</td>
    <td>{{printf "%.4f" .Neutral}}</td>
    <td>{{.HeadlineCount}}</td>
  </tr>
  {{end}}
</table>
<h2>Compound score</h2>
{{.Chart}}
<h2>Tickers</h2>
<div class="cards">
  {{range .Tickers}}
  <div class="card">
    <h3>{{.Ticker}}</h3>
    {{.Gauge}}
    {{if .Narrative}}<div class="narrative">{{.Narrative}}</div>{{end}}
  </div>
  {{end}}
</div>
{{end}}
<div class="footer">Sentiment is computed from news headlines only. Not financial advice.</div>
</body>
</html>
`
