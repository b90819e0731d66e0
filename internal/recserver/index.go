package recserver

import "net/http"

// indexPage is the minimal built-in UI: a query form that calls
// /api/recommend and renders the returned table.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Assessment Recommender</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; height: 6rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
#reasoning { margin-top: 1rem; color: #444; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Assessment Recommender</h1>
<p>Paste a hiring query, a job description, or a JD URL.</p>
<form id="f">
<textarea name="query" placeholder="e.g. Java developers who can collaborate with business teams, 40 minutes max"></textarea>
<p>
<label>Type
<select name="type">
<option value="">auto</option>
<option value="text">text</option>
<option value="url">url</option>
</select>
</label>
<label>Results <input name="final_k" type="number" min="1" max="10" value="5" size="3"></label>
<button type="submit">Recommend</button>
</p>
</form>
<div id="out"></div>
<div id="reasoning"></div>
<script>
document.getElementById('f').addEventListener('submit', async function (ev) {
  ev.preventDefault();
  const fd = new FormData(ev.target);
  const body = {
    query: fd.get('query'),
    type: fd.get('type'),
    final_k: parseInt(fd.get('final_k'), 10) || 5
  };
  const out = document.getElementById('out');
  const reasoning = document.getElementById('reasoning');
  out.textContent = 'Working...';
  reasoning.textContent = '';
  const resp = await fetch('/api/recommend', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(body)
  });
  const data = await resp.json();
  if (!resp.ok) {
    out.textContent = data.error || 'request failed';
    return;
  }
  const rows = (data.recommended_assessments || []).map(function (a) {
    return '<tr><td><a href="' + a.url + '">' + a.name + '</a></td><td>' +
      (a.test_type || []).join(', ') + '</td><td>' + a.duration + ' min</td><td>' +
      a.adaptive_support + '</td><td>' + a.remote_support + '</td><td>' +
      (a.reason || '') + '</td></tr>';
  });
  out.innerHTML = '<table><tr><th>Assessment</th><th>Type</th><th>Duration</th>' +
    '<th>Adaptive</th><th>Remote</th><th>Why</th></tr>' + rows.join('') + '</table>';
  reasoning.textContent = data.reasoning_trace || '';
});
</script>
</body>
</html>
`

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}
