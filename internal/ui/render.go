package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"devscout/pkg/chattypes"
)

// Renderer turns display units into terminal output. Cards are laid out with
// lipgloss; assistant text is rendered as markdown through glamour unless the
// terminal has no color support, in which case everything falls back to
// plain text.
type Renderer struct {
	plain    bool
	markdown *glamour.TermRenderer

	cardStyle   lipgloss.Style
	titleStyle  lipgloss.Style
	userStyle   lipgloss.Style
	errorStyle  lipgloss.Style
	mutedStyle  lipgloss.Style
	upStyle     lipgloss.Style
	downStyle   lipgloss.Style
	statusStyle lipgloss.Style
}

// NewRenderer creates a terminal renderer, probing the terminal's color
// capability to decide between styled and plain output.
func NewRenderer() *Renderer {
	return newRenderer(termenv.ColorProfile() == termenv.Ascii)
}

// NewPlainRenderer creates a renderer that never emits styling, for tests
// and non-terminal output.
func NewPlainRenderer() *Renderer {
	return newRenderer(true)
}

func newRenderer(plain bool) *Renderer {
	r := &Renderer{plain: plain}
	if !plain {
		if md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(76),
		); err == nil {
			r.markdown = md
		}
		r.cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
		r.titleStyle = lipgloss.NewStyle().Bold(true)
		r.userStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
		r.errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		r.mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		r.upStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
		r.downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		r.statusStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))
	}
	return r
}

// Render returns the terminal representation of one display unit.
func (r *Renderer) Render(unit DisplayUnit) string {
	switch unit.Kind {
	case KindUserText:
		return r.userStyle.Render("> " + unit.Text)
	case KindBotText:
		return r.renderMarkdown(unit.Text)
	case KindSpinner:
		return r.statusStyle.Render(unit.Text)
	case KindError:
		return r.errorStyle.Render(unit.Text)
	case KindStocks:
		return r.renderStocks(unit)
	case KindStock:
		return r.renderStock(unit)
	case KindPurchase:
		return r.renderPurchase(unit)
	case KindEvents:
		return r.renderEvents(unit)
	case KindDevelopers:
		return r.renderDevelopers(unit)
	}
	return unit.Text
}

func (r *Renderer) renderMarkdown(text string) string {
	if r.markdown == nil {
		return text
	}
	rendered, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func (r *Renderer) renderStocks(unit DisplayUnit) string {
	stocks, err := decodePayload[[]chattypes.Stock](unit.Payload)
	if err != nil {
		return r.errorStyle.Render("unrenderable stock list")
	}
	lines := make([]string, 0, len(stocks)+1)
	lines = append(lines, r.titleStyle.Render("Trending stocks"))
	for _, stock := range stocks {
		lines = append(lines, fmt.Sprintf("%-6s  $%.2f  %s", stock.Symbol, stock.Price, r.delta(stock.Delta)))
	}
	return r.card(strings.Join(lines, "\n"))
}

func (r *Renderer) renderStock(unit DisplayUnit) string {
	stock, err := decodePayload[chattypes.Stock](unit.Payload)
	if err != nil {
		return r.errorStyle.Render("unrenderable stock")
	}
	body := fmt.Sprintf("%s\n$%.2f  %s",
		r.titleStyle.Render(stock.Symbol), stock.Price, r.delta(stock.Delta))
	return r.card(body)
}

func (r *Renderer) renderPurchase(unit DisplayUnit) string {
	purchase, err := decodePayload[chattypes.Purchase](unit.Payload)
	if err != nil {
		return r.errorStyle.Render("unrenderable purchase")
	}
	var body string
	switch purchase.Status {
	case chattypes.PurchaseExpired:
		body = fmt.Sprintf("Purchase of %d %s expired: invalid amount",
			purchase.NumberOfShares, purchase.Symbol)
	case chattypes.PurchaseCompleted:
		body = fmt.Sprintf("Purchased %d shares of %s at $%.2f. Total cost: $%.2f",
			purchase.NumberOfShares, purchase.Symbol, purchase.Price,
			float64(purchase.NumberOfShares)*purchase.Price)
	default:
		body = fmt.Sprintf("%s\nBuy %d shares at $%.2f?\nTotal: $%.2f  (awaiting confirmation)",
			r.titleStyle.Render(purchase.Symbol), purchase.NumberOfShares,
			purchase.Price, float64(purchase.NumberOfShares)*purchase.Price)
	}
	return r.card(body)
}

func (r *Renderer) renderEvents(unit DisplayUnit) string {
	events, err := decodePayload[[]chattypes.Event](unit.Payload)
	if err != nil {
		return r.errorStyle.Render("unrenderable events")
	}
	lines := make([]string, 0, len(events)*2)
	for _, event := range events {
		lines = append(lines, r.titleStyle.Render(event.Date+"  "+event.Headline))
		lines = append(lines, r.mutedStyle.Render(event.Description))
	}
	return r.card(strings.Join(lines, "\n"))
}

func (r *Renderer) renderDevelopers(unit DisplayUnit) string {
	developers, err := decodePayload[[]chattypes.Developer](unit.Payload)
	if err != nil {
		return r.errorStyle.Render("unrenderable developer list")
	}
	lines := make([]string, 0, len(developers)*3)
	for _, dev := range developers {
		lines = append(lines, r.titleStyle.Render(dev.RepoURL))
		lines = append(lines, fmt.Sprintf("score %.1f  analysis rate %.1f  %s",
			dev.AverageScore, dev.AnalysisRate, dev.UserURL))
		lines = append(lines, r.mutedStyle.Render(truncate(dev.Summary, 200)))
	}
	return r.card(strings.Join(lines, "\n"))
}

func (r *Renderer) delta(delta float64) string {
	text := fmt.Sprintf("%+.2f", delta)
	if delta >= 0 {
		return r.upStyle.Render(text)
	}
	return r.downStyle.Render(text)
}

func (r *Renderer) card(body string) string {
	if r.plain {
		return body
	}
	return r.cardStyle.Render(body)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
