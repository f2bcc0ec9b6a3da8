// Package resolve implements the price resolution pipeline: an ordered
// chain of extraction strategies over one parsed listing page, a normalizer
// that turns raw price strings into canonical decimal amounts, and terminal
// failure classification that distinguishes blocked pages from genuine
// stock-outs.
package resolve

import (
	"log/slog"
	"strings"

	"pricewatch"
)

var _ pricewatch.Resolver = (*Pipeline)(nil)

// blockedTitlePhrases mark bot interstitials. A page that yields no price
// and carries one of these in its title resolves StatusBlocked rather than
// StatusOutOfStock, so operators know to retry later instead of accepting a
// stock-out.
var blockedTitlePhrases = []string{
	"access denied",
	"robot",
	"captcha",
	"verify you are human",
	"attention required",
	"unusual traffic",
}

// Pipeline resolves prices by trying strategies in fixed priority order:
// structured data, then site rules, then the generic pattern scan. The
// first candidate that normalizes wins. Every strategy-internal failure is
// recovered locally; only the final classification reaches the caller.
//
// Resolution is a pure computation over already-fetched content and safe
// for concurrent use; the shared rule set is read-only.
type Pipeline struct {
	strategies []Strategy
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for per-candidate debug logging.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a Pipeline over the given site rules.
func NewPipeline(rules []pricewatch.SiteRule, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		strategies: []Strategy{
			NewStructuredData(),
			NewSiteRules(rules),
			NewPattern(),
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve resolves the price on one fetched page in a single pass with no
// internal retries. Fetch failures never enter resolution; the caller
// classifies those as StatusNetworkError.
func (p *Pipeline) Resolve(page *pricewatch.Page) pricewatch.ResolvedPrice {
	if page == nil || !pricewatch.Fetchable(page.URL) {
		return pricewatch.Failed(pricewatch.StatusNotAvailable)
	}

	doc, err := ParsePage(page)
	if err != nil {
		// The parser is tolerant; a page it cannot parse at all has no
		// price and no readable blocking signal.
		return pricewatch.Failed(pricewatch.StatusOutOfStock)
	}

	for _, strategy := range p.strategies {
		candidate := strategy.Extract(doc)
		if candidate == nil {
			continue
		}

		amount, err := Normalize(candidate.Value)
		if err != nil {
			if p.logger != nil {
				p.logger.Debug("price candidate discarded",
					slog.String("url", doc.URL),
					slog.String("source", candidate.Source),
					slog.String("value", candidate.Value),
					slog.String("err", err.Error()),
				)
			}
			continue
		}

		if p.logger != nil {
			p.logger.Debug("price resolved",
				slog.String("url", doc.URL),
				slog.String("source", candidate.Source),
				slog.Float64("amount", amount),
			)
		}
		return pricewatch.Resolved(amount)
	}

	if titleBlocked(doc.Title) {
		return pricewatch.Failed(pricewatch.StatusBlocked)
	}
	return pricewatch.Failed(pricewatch.StatusOutOfStock)
}

// titleBlocked reports whether the title carries a blocking phrase.
// Matching is case-insensitive.
func titleBlocked(title string) bool {
	t := strings.ToLower(title)
	for _, phrase := range blockedTitlePhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}
