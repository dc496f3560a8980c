package renderer

import "github.com/rachitg/kitefolio"

// RenderSummary renders the full analysis report to markdown.
func RenderSummary(r *kitefolio.AnalysisResult) string {
	return renderTemplate("summary.md", r)
}

// RenderTransactions renders the inferred transaction log to markdown.
func RenderTransactions(txns []kitefolio.Transaction) string {
	return renderTemplate("transactions.md", txns)
}

// holdingsReport carries a captured snapshot and its aggregate figures.
type holdingsReport struct {
	Holdings []kitefolio.Holding
	Summary  kitefolio.PortfolioSummary
}

// RenderHoldings renders a freshly captured holdings snapshot to markdown.
func RenderHoldings(holdings []kitefolio.Holding) string {
	return renderTemplate("holdings.md", holdingsReport{
		Holdings: holdings,
		Summary:  kitefolio.NewPortfolioSummary(holdings),
	})
}
