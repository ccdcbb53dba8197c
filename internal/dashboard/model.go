package dashboard

// Summary aggregates the workspace numbers shown on the landing page.
type Summary struct {
	Clients    int `json:"clientes"`
	Products   int `json:"produtos"`
	Categories int `json:"categorias"`
	Quotes     int `json:"orcamentos"`

	TotalsByStatus []StatusTotal  `json:"totaisPorStatus"`
	MonthlySeries  []MonthlyTotal `json:"serieMensal"`
	TopClients     []ClientTotal  `json:"topClientes"`
}

// StatusTotal groups quote count and value by status.
type StatusTotal struct {
	Status string  `json:"status"`
	Count  int     `json:"quantidade"`
	Total  float64 `json:"total"`
}

// MonthlyTotal is one point of the approved-value series.
type MonthlyTotal struct {
	Month string  `json:"mes"` // formatted as 2006-01
	Total float64 `json:"total"`
}

// ClientTotal ranks a client by approved quote value.
type ClientTotal struct {
	ClientID   *int64  `json:"clienteId,omitempty"`
	ClientName string  `json:"clienteNome"`
	Total      float64 `json:"total"`
}
