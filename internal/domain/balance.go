package domain

// Balance is the derived income minus outcome view over all transactions.
// It is recomputed on demand and never persisted.
type Balance struct {
	Income  string `json:"income"`
	Outcome string `json:"outcome"`
	Total   string `json:"total"`
}
