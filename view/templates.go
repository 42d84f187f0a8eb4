// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package view

const textPage = `{{.Title}}
{{if .Dashboard -}}
Your Account: {{.Account}}
Your Balance: {{.Balance}} ETH
Results:
{{range .Results}}  {{.}}
{{end -}}
{{else if .Connect -}}
` + ConnectPrompt + `
{{else -}}
` + InstallPrompt + `
{{end -}}`

const htmlPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>ATM</title>
<style>.container { text-align: center; }</style></head>
<body>
<main class="container">
<header><h1>{{.Title}}</h1></header>
{{if .Dashboard -}}
<div>
<p>Your Account: {{.Account}}</p>
<p>Your Balance: {{.Balance}} ETH</p>
<form method="post" action="/deposit"><button type="submit">Deposit 1 ETH</button></form>
<form method="post" action="/withdraw"><button type="submit">Withdraw 1 ETH</button></form>
<div>
<h2>Add Candidate</h2>
<form method="post" action="/candidates">
<input name="name" value="{{.Input}}">
<button type="submit">Add Candidate</button>
</form>
</div>
<div>
<h2>Vote</h2>
<form method="post" action="/select">
<select name="candidate" onchange="this.form.submit()">
<option value="">Select a candidate</option>
{{- range .Candidates}}
<option value="{{.Name}}"{{if eq .Name $.Selection}} selected{{end}}>{{.Name}}</option>
{{- end}}
</select>
</form>
<form method="post" action="/vote"><button type="submit">Vote</button></form>
</div>
<div>
<h2>Results</h2>
{{- range .Results}}
<p>{{.}}</p>
{{- end}}
</div>
</div>
{{- else if .Connect}}
<form method="post" action="/connect"><button type="submit">` + ConnectPrompt + `</button></form>
{{- else}}
<p>` + InstallPrompt + `</p>
{{- end}}
</main>
</body>
</html>
`
