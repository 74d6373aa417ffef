// Package advisor turns the active user's holdings into a prompt for a text
// generation model and returns its advisory text.
package advisor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"wealthtrack/internal/logger"
	"wealthtrack/internal/models"
	"wealthtrack/internal/portfolio"
)

// FallbackMessage is returned whenever no advice could be generated.
const FallbackMessage = "Unable to generate an analysis right now. Check your network connection or try again later."

// TextGenerator produces a completion for a single prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Advisor formats holdings and forwards them to a TextGenerator. It keeps no
// state between calls and never retries.
type Advisor struct {
	gen TextGenerator
}

// New creates an Advisor backed by gen.
func New(gen TextGenerator) *Advisor {
	return &Advisor{gen: gen}
}

// Analyze returns advisory text for assets, or FallbackMessage if the
// generator fails or answers with nothing.
func (a *Advisor) Analyze(ctx context.Context, assets []models.Asset, currencies []models.Currency, paths []models.InvestmentPath) string {
	if a.gen == nil {
		return FallbackMessage
	}
	text, err := a.gen.GenerateContent(ctx, BuildPrompt(assets, currencies, paths))
	if err != nil {
		logger.Get().Warnw("advisory generation failed", "error", err)
		return FallbackMessage
	}
	if strings.TrimSpace(text) == "" {
		return FallbackMessage
	}
	return text
}

// BuildPrompt lists every asset on its own line and asks for the four parts
// of the analysis.
func BuildPrompt(assets []models.Asset, currencies []models.Currency, paths []models.InvestmentPath) string {
	lines := make([]string, 0, len(assets))
	for _, asset := range assets {
		lines = append(lines, fmt.Sprintf("Asset: %s, Path: %s, Amount: %s %s, Expected yield: %s%%",
			asset.Name,
			portfolio.ResolvePathName(asset.PathID, paths),
			strconv.FormatFloat(asset.Amount, 'f', -1, 64),
			asset.CurrencyCode,
			strconv.FormatFloat(asset.AnnualYield, 'f', -1, 64),
		))
	}

	var b strings.Builder
	b.WriteString("As a world-class wealth advisor, analyse the following portfolio")
	fmt.Fprintf(&b, " (home currency %s", models.HomeCurrency)
	if len(currencies) > 0 {
		codes := make([]string, 0, len(currencies))
		for _, c := range currencies {
			codes = append(codes, c.Code)
		}
		fmt.Fprintf(&b, "; tracked currencies %s", strings.Join(codes, ", "))
	}
	b.WriteString("):\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. A risk assessment of the portfolio.\n")
	b.WriteString("2. Your view on the current CNY, HKD and USD allocation split.\n")
	b.WriteString("3. Three concrete optimisation suggestions balancing capital preservation and growth.\n")
	b.WriteString("4. An outlook on diversified allocation for the next 6-12 months.\n\n")
	b.WriteString("Answer in a professional, concise and insightful way.")
	return b.String()
}
