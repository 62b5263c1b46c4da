package engine

import (
	"context"
	"errors"
	"fmt"

	"justicia-backend/models"
)

// DefaultPrecedentLimit is how many precedents a tier 2 suggestion asks for.
const DefaultPrecedentLimit = 3

// titleKeyword identifies an executory title in the evidence narrative.
const titleKeyword = "pagaré"

const (
	collectionInterestFactor = 1.15
	suggestionDiscount       = 0.9
	balancedShare            = 0.7
)

// PrecedentLookup returns up to limit precedents of a case type, most
// recent first. An empty result is not an error.
type PrecedentLookup interface {
	FindRecent(ctx context.Context, caseType string, limit int) ([]models.Precedent, error)
}

// PrecedentLookupFunc adapts a function to PrecedentLookup.
type PrecedentLookupFunc func(ctx context.Context, caseType string, limit int) ([]models.Precedent, error)

// FindRecent calls f.
func (f PrecedentLookupFunc) FindRecent(ctx context.Context, caseType string, limit int) ([]models.Precedent, error) {
	return f(ctx, caseType, limit)
}

// Generator drafts a decision for a classified case.
type Generator struct {
	lookup         PrecedentLookup
	precedentLimit int
}

// GeneratorOption is a functional option for Generator
type GeneratorOption func(*Generator)

// WithPrecedentLimit changes how many precedents tier 2 requests
func WithPrecedentLimit(limit int) GeneratorOption {
	return func(g *Generator) {
		if limit > 0 {
			g.precedentLimit = limit
		}
	}
}

// NewGenerator creates a decision generator backed by lookup.
func NewGenerator(lookup PrecedentLookup, opts ...GeneratorOption) *Generator {
	g := &Generator{
		lookup:         lookup,
		precedentLimit: DefaultPrecedentLimit,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide dispatches on tier. Only tier 2 performs I/O. Either a complete
// decision or an error is returned.
func (g *Generator) Decide(ctx context.Context, cs models.Case, tier int) (*models.Decision, error) {
	if tier < 1 || tier > 4 {
		return nil, invalidTier(tier)
	}
	if err := ValidateCase(cs); err != nil {
		return nil, err
	}

	switch tier {
	case 1:
		return g.decideRoutine(cs)
	case 2:
		return g.decideWithPrecedent(ctx, cs)
	case 3:
		return g.decidePerspectives(cs)
	default:
		return g.decideExpanded(cs)
	}
}

type grantData struct {
	ClaimedAmount float64
	AwardedAmount float64
}

func (g *Generator) decideRoutine(cs models.Case) (*models.Decision, error) {
	if cs.CaseType == models.CaseTypeMoneyCollection && containsAny(cs.Evidence, []string{titleKeyword}) {
		awarded := roundCents(cs.ClaimedAmount * collectionInterestFactor)
		text, err := render(collectionTmpl, grantData{ClaimedAmount: cs.ClaimedAmount, AwardedAmount: awarded})
		if err != nil {
			return nil, err
		}
		return &models.Decision{
			Kind:            models.DecisionKindAutomatic,
			Outcome:         models.OutcomeGrants,
			AwardedAmount:   &awarded,
			Justification:   text,
			AppliedArticles: []string{"729", "730", "886", "1816"},
			Confidence:      0.95,
		}, nil
	}

	awarded := cs.ClaimedAmount
	text, err := render(genericGrantTmpl, grantData{ClaimedAmount: cs.ClaimedAmount, AwardedAmount: awarded})
	if err != nil {
		return nil, err
	}
	return &models.Decision{
		Kind:            models.DecisionKindAutomatic,
		Outcome:         models.OutcomeGrants,
		AwardedAmount:   &awarded,
		Justification:   text,
		AppliedArticles: []string{"1716", "1740"},
		Confidence:      0.85,
	}, nil
}

type precedentData struct {
	Facts           string
	Precedent       models.Precedent
	SuggestedAmount float64
}

func (g *Generator) decideWithPrecedent(ctx context.Context, cs models.Case) (*models.Decision, error) {
	if g.lookup == nil {
		return nil, fmt.Errorf("%w: no precedent lookup configured", ErrLookupFailure)
	}

	precedents, err := g.lookup.FindRecent(ctx, cs.CaseType, g.precedentLimit)
	if err != nil {
		if errors.Is(err, ErrLookupFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrLookupFailure, err)
	}

	if len(precedents) == 0 {
		text, err := render(noPrecedentTmpl, nil)
		if err != nil {
			return nil, err
		}
		return &models.Decision{
			Kind:            models.DecisionKindAssisted,
			Outcome:         models.OutcomeRequiresAnalysis,
			Justification:   text,
			AppliedArticles: []string{},
			Confidence:      0.60,
		}, nil
	}

	reference := precedents[0]
	suggested := roundCents(cs.ClaimedAmount * suggestionDiscount)
	text, err := render(precedentTmpl, precedentData{
		Facts:           cs.Facts,
		Precedent:       reference,
		SuggestedAmount: suggested,
	})
	if err != nil {
		return nil, err
	}

	return &models.Decision{
		Kind:                 models.DecisionKindAssisted,
		Outcome:              models.OutcomeGrantsPartial,
		AwardedAmount:        &suggested,
		Justification:        text,
		AppliedArticles:      []string{"1716", "1740", "1757"},
		ConsideredPrecedents: []string{reference.Title},
		Confidence:           0.85,
	}, nil
}

var (
	claimantArguments = []string{
		"The claimant has met the burden of proof required by art. 377 CPCC",
		"The damage is duly proven and there is a direct causal link",
		"Compensation must be full under art. 1740 CCyC",
		"The respondent has failed to rebut the claim or prove any exemption from liability",
		"The amount claimed is reasonable and proportional to the damage actually suffered",
	}
	balancedArguments = []string{
		"Although the claimant proves the harmful event, there are mitigating circumstances to consider",
		"The principle of proportionality applies to the quantification of the damage",
		"Liability may be shared depending on the circumstances of the case",
		"The amount should be adjusted to the parameters of similar cases",
		"A balanced solution that considers the interests of both parties is suggested",
	}
	respondentArguments = []string{
		"The claimant has not fully proven every element of the claim",
		"There are reasonable doubts about the existence of a causal link",
		"The respondent has raised admissible defenses that deserve consideration",
		"The amount claimed is excessive and disproportionate",
		"Exemptions from liability may apply to the case",
	}
)

// perspectives always returns the three framings in the same order.
func perspectives(cs models.Case) models.Perspectives {
	return models.Perspectives{
		{
			Label:           models.PerspectiveFavorClaimant,
			Focus:           "Interpretation favorable to the claimant",
			ProposedOutcome: models.OutcomeGrants,
			ProposedAmount:  cs.ClaimedAmount,
			Arguments:       append([]string(nil), claimantArguments...),
		},
		{
			Label:           models.PerspectiveBalanced,
			Focus:           "Balanced interpretation",
			ProposedOutcome: models.OutcomeGrantsPartial,
			ProposedAmount:  roundCents(cs.ClaimedAmount * balancedShare),
			Arguments:       append([]string(nil), balancedArguments...),
		},
		{
			Label:           models.PerspectiveFavorRespondent,
			Focus:           "Interpretation favorable to the respondent",
			ProposedOutcome: models.OutcomeRejects,
			ProposedAmount:  0,
			Arguments:       append([]string(nil), respondentArguments...),
		},
	}
}

func (g *Generator) decidePerspectives(cs models.Case) (*models.Decision, error) {
	views := perspectives(cs)
	text, err := render(perspectivesTmpl, struct{ Perspectives models.Perspectives }{views})
	if err != nil {
		return nil, err
	}
	return &models.Decision{
		Kind:            models.DecisionKindHuman,
		Outcome:         models.OutcomeRequiresDeliberation,
		Justification:   text,
		AppliedArticles: []string{},
		Perspectives:    views,
		Confidence:      0.70,
	}, nil
}

func (g *Generator) decideExpanded(cs models.Case) (*models.Decision, error) {
	text, err := render(deliberationTmpl, struct{ Facts string }{cs.Facts})
	if err != nil {
		return nil, err
	}
	return &models.Decision{
		Kind:            models.DecisionKindDeliberative,
		Outcome:         models.OutcomeRequiresDeliberationExpanded,
		Justification:   text,
		AppliedArticles: []string{},
		Confidence:      0.60,
	}, nil
}
