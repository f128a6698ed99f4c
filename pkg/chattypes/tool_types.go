package chattypes

// Tool names understood by the registry, the model dispatchers, and the UI
// projection. The model invokes tools by these names.
const (
	ToolListStocks        = "listStocks"
	ToolShowStockPrice    = "showStockPrice"
	ToolShowStockPurchase = "showStockPurchase"
	ToolGetEvents         = "getEvents"
	ToolGetDevelopers     = "getDevelopers"
)

// ToolDescriptor declares a callable capability exposed to the model.
// InputSchema is a JSON Schema document in map form, ready for provider
// tool-definition payloads.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}
