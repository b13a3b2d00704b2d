package intake

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// Options tunes candidate retrieval for reply drafting.
type Options struct {
	MaxCandidates int
	MinSimilarity float64
}

// Service drafts an automatic first reply for an inbound ticket: it searches
// the knowledge base for relevant articles and hands them to the composer.
type Service struct {
	searcher Searcher
	composer Composer
	opts     Options
	logger   *zap.Logger
}

// New creates an intake service.
func New(searcher Searcher, composer Composer, opts Options, logger *zap.Logger) *Service {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 3
	}
	if opts.MinSimilarity == 0 {
		opts.MinSimilarity = 0.5
	}
	return &Service{searcher: searcher, composer: composer, opts: opts, logger: logger}
}

// Draft is the outcome of a reply-drafting run.
type Draft struct {
	Reply      string
	Candidates []domain.SearchResult
}

// DraftReply searches for articles matching the ticket text and composes a
// reply referencing them. With no candidates above the similarity floor it
// returns an empty draft rather than composing from nothing.
func (s *Service) DraftReply(ctx context.Context, ticketText string) (Draft, error) {
	if strings.TrimSpace(ticketText) == "" {
		return Draft{}, fmt.Errorf("%w: ticket text is required", domain.ErrInvalidArgument)
	}

	candidates, err := s.searcher.Search(ctx, ticketText, s.opts.MaxCandidates, s.opts.MinSimilarity)
	if err != nil {
		return Draft{}, fmt.Errorf("search candidates: %w", err)
	}
	if len(candidates) == 0 {
		s.logger.Debug("no candidate articles for ticket")
		return Draft{}, nil
	}

	reply, err := s.composer.Compose(ctx, ticketText, candidates)
	if err != nil {
		return Draft{}, fmt.Errorf("compose reply: %w", err)
	}
	return Draft{Reply: reply, Candidates: candidates}, nil
}
