package quotes

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var templateFuncs = template.FuncMap{
	"money": func(v float64) string {
		s := fmt.Sprintf("%.2f", v)
		s = strings.ReplaceAll(s, ".", ",")
		return "R$ " + s
	},
}

var pdfTemplate = template.Must(template.New("quote-pdf").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<style>
	body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 40px; }
	h1 { font-size: 22px; margin-bottom: 0; }
	.meta { color: #555; font-size: 12px; margin-bottom: 24px; }
	table { width: 100%; border-collapse: collapse; font-size: 13px; }
	th, td { border-bottom: 1px solid #ddd; padding: 8px 6px; text-align: left; }
	th { background: #f4f4f4; }
	td.num, th.num { text-align: right; }
	.totals { margin-top: 16px; width: 40%; margin-left: auto; font-size: 13px; }
	.totals td { border: none; padding: 4px 6px; }
	.totals tr.grand td { font-weight: bold; border-top: 2px solid #1a1a1a; }
	.notes { margin-top: 24px; font-size: 12px; color: #555; white-space: pre-wrap; }
</style>
</head>
<body>
	<h1>Orçamento #{{ .Number }}</h1>
	<p class="meta">
		Cliente: {{ .ClientName }}{{ with .ClientDocument }} ({{ . }}){{ end }}<br>
		{{ with .ClientEmail }}{{ . }}<br>{{ end }}
		{{ with .ClientPhone }}{{ . }}<br>{{ end }}
		{{ with .ClientAddress }}{{ . }}<br>{{ end }}
		Emitido em {{ .CreatedAt.Format "02/01/2006" }}{{ with .ValidUntil }} · Válido até {{ .Format "02/01/2006" }}{{ end }}
	</p>
	<table>
		<thead>
			<tr>
				<th>Item</th><th>Un.</th>
				<th class="num">Qtd.</th><th class="num">Valor unit.</th><th class="num">Total</th>
			</tr>
		</thead>
		<tbody>
			{{ range .Items }}
			<tr>
				<td>{{ .Name }}</td><td>{{ .Unit }}</td>
				<td class="num">{{ .Quantity }}</td>
				<td class="num">{{ money .UnitValue }}</td>
				<td class="num">{{ money .Total }}</td>
			</tr>
			{{ end }}
		</tbody>
	</table>
	<table class="totals">
		<tr><td>Subtotal</td><td class="num">{{ money .Subtotal }}</td></tr>
		<tr class="grand"><td>Total</td><td class="num">{{ money .Total }}</td></tr>
	</table>
	{{ with .Notes }}<p class="notes">{{ . }}</p>{{ end }}
</body>
</html>`))

var emailTemplate = template.Must(template.New("quote-email").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a1a;">
	<p>Olá, {{ .Quote.ClientName }}!</p>
	{{ with .Message }}<p style="white-space: pre-wrap;">{{ . }}</p>{{ end }}
	<p>Segue o orçamento <strong>#{{ .Quote.Number }}</strong> no valor de
	<strong>{{ money .Quote.Total }}</strong>{{ with .Quote.ValidUntil }}, válido até {{ .Format "02/01/2006" }}{{ end }}.</p>
	<table style="border-collapse: collapse; font-size: 13px;">
		{{ range .Quote.Items }}
		<tr>
			<td style="padding: 4px 12px 4px 0;">{{ .Name }}</td>
			<td style="padding: 4px 12px 4px 0;">{{ .Quantity }} {{ .Unit }}</td>
			<td style="padding: 4px 0; text-align: right;">{{ money .Total }}</td>
		</tr>
		{{ end }}
	</table>
</body>
</html>`))

func renderHTML(quote *Quote) (string, error) {
	var buf bytes.Buffer
	if err := pdfTemplate.Execute(&buf, quote); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderEmailHTML(quote *Quote, message *string) (string, error) {
	data := struct {
		Quote   *Quote
		Message *string
	}{Quote: quote, Message: message}
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
