package chattypes

// This file contains the tool-specific payload shapes carried inside tool
// results. The lifecycle core treats them as opaque structured data; only the
// terminal renderer and the tools that produce them care about the fields.

// Stock is a single listed stock with its current price and price change.
type Stock struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Delta  float64 `json:"delta"`
}

// Event is a dated market event headline.
type Event struct {
	Date        string `json:"date"` // ISO-8601
	Headline    string `json:"headline"`
	Description string `json:"description"`
}

// Developer is one entry of the developer-scouting demonstration dataset.
type Developer struct {
	AverageScore float64 `json:"average_score" yaml:"average_score"`
	AnalysisRate float64 `json:"analysis_rate" yaml:"analysis_rate"`
	RepoURL      string  `json:"repo_url" yaml:"repo_url"`
	UserURL      string  `json:"user_url" yaml:"user_url"`
	Summary      string  `json:"summary" yaml:"summary"`
}

// PurchaseStatus tracks the terminal variant of a purchase flow.
type PurchaseStatus string

const (
	// PurchaseRequiresAction marks a purchase awaiting user confirmation.
	PurchaseRequiresAction PurchaseStatus = "requires_action"
	// PurchaseExpired marks a purchase rejected for an invalid share amount.
	PurchaseExpired PurchaseStatus = "expired"
	// PurchaseCompleted marks a confirmed, simulated purchase.
	PurchaseCompleted PurchaseStatus = "completed"
)

// Purchase is the payload of the stock purchase tool and confirmation flow.
type Purchase struct {
	Symbol         string         `json:"symbol"`
	Price          float64        `json:"price"`
	NumberOfShares int            `json:"number_of_shares"`
	Status         PurchaseStatus `json:"status"`
}
