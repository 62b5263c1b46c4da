package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"justicia-backend/engine"
	"justicia-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLookup struct {
	precedents []models.Precedent
	err        error
}

func (f fixedLookup) FindRecent(_ context.Context, _ string, limit int) ([]models.Precedent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.precedents) {
		return f.precedents[:limit], nil
	}
	return f.precedents, nil
}

func samplePrecedent() models.Precedent {
	return models.Precedent{
		Title:             "Gómez v. Transportes del Sur",
		IssuingBody:       "Civil Court of Appeals, Chamber B",
		DecisionDate:      time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC),
		CaseType:          models.CaseTypeDamages,
		SummarizedFacts:   "Rear-end collision at a traffic light with minor injuries",
		Outcome:           "granted in part",
		ApproximateAmount: 380000,
		AppliedPrinciples: "Strict liability of the vehicle owner (art. 1757 CCyC)",
	}
}

func TestDecide_Tier1CollectionWithPromissoryNote(t *testing.T) {
	g := engine.NewGenerator(nil)
	cs := models.Case{
		CaseType:      models.CaseTypeMoneyCollection,
		ClaimedAmount: 200000,
		Evidence:      "Pagaré firmado",
	}

	d, err := g.Decide(context.Background(), cs, 1)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionKindAutomatic, d.Kind)
	assert.Equal(t, models.OutcomeGrants, d.Outcome)
	require.NotNil(t, d.AwardedAmount)
	assert.Equal(t, 230000.0, *d.AwardedAmount)
	assert.Equal(t, 0.95, d.Confidence)
	assert.Equal(t, []string{"729", "730", "886", "1816"}, d.AppliedArticles)
	assert.Contains(t, d.Justification, "$200,000.00 as principal")
	assert.Contains(t, d.Justification, "(estimated total $230,000.00)")
	assert.Contains(t, d.Justification, "Arts. 765-768 CCyC")
}

func TestDecide_Tier1Generic(t *testing.T) {
	g := engine.NewGenerator(nil)
	cs := models.Case{
		CaseType:      models.CaseTypeDamages,
		ClaimedAmount: 150000,
		Evidence:      "signed contract",
	}

	d, err := g.Decide(context.Background(), cs, 1)
	require.NoError(t, err)

	require.NotNil(t, d.AwardedAmount)
	assert.Equal(t, 150000.0, *d.AwardedAmount)
	assert.Equal(t, 0.85, d.Confidence)
	assert.Equal(t, []string{"1716", "1740"}, d.AppliedArticles)
	assert.Contains(t, d.Justification, "sum claimed of $150,000.00")
}

func TestDecide_Tier1CollectionWithoutTitleIsGeneric(t *testing.T) {
	g := engine.NewGenerator(nil)
	cs := models.Case{
		CaseType:      models.CaseTypeMoneyCollection,
		ClaimedAmount: 100000,
		Evidence:      "invoices",
	}

	d, err := g.Decide(context.Background(), cs, 1)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, *d.AwardedAmount)
	assert.Equal(t, 0.85, d.Confidence)
}

func TestDecide_Tier2WithPrecedent(t *testing.T) {
	older := samplePrecedent()
	older.Title = "Older ruling"
	g := engine.NewGenerator(fixedLookup{precedents: []models.Precedent{samplePrecedent(), older}})

	cs := models.Case{
		CaseType:      models.CaseTypeDamages,
		ClaimedAmount: 450000,
		Facts:         strings.Repeat("x", 250),
	}

	d, err := g.Decide(context.Background(), cs, 2)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionKindAssisted, d.Kind)
	assert.Equal(t, models.OutcomeGrantsPartial, d.Outcome)
	require.NotNil(t, d.AwardedAmount)
	assert.Equal(t, 405000.0, *d.AwardedAmount)
	assert.Equal(t, 0.85, d.Confidence)
	assert.Equal(t, []string{"1716", "1740", "1757"}, d.AppliedArticles)
	assert.Equal(t, []string{"Gómez v. Transportes del Sur"}, d.ConsideredPrecedents)

	assert.Contains(t, d.Justification, `"Gómez v. Transportes del Sur"`)
	assert.Contains(t, d.Justification, "(Civil Court of Appeals, Chamber B, 2023-05-15)")
	assert.Contains(t, d.Justification, "- Current case: "+strings.Repeat("x", 200)+"...\n")
	assert.Contains(t, d.Justification, "Strict liability of the vehicle owner")
	assert.Contains(t, d.Justification, "$405,000.00")
	assert.Contains(t, d.Justification, "Confidence of the suggestion: 85%")
	assert.NotContains(t, d.Justification, "Older ruling")
}

func TestDecide_Tier2NoPrecedents(t *testing.T) {
	g := engine.NewGenerator(fixedLookup{})
	cs := models.Case{CaseType: "eviction", ClaimedAmount: 450000}

	d, err := g.Decide(context.Background(), cs, 2)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeRequiresAnalysis, d.Outcome)
	assert.Nil(t, d.AwardedAmount)
	assert.Equal(t, 0.60, d.Confidence)
	assert.Empty(t, d.AppliedArticles)
	assert.Contains(t, d.Justification, "No direct precedents")
}

func TestDecide_Tier2LookupFailure(t *testing.T) {
	g := engine.NewGenerator(fixedLookup{err: errors.New("connection refused")})
	cs := models.Case{CaseType: models.CaseTypeDamages, ClaimedAmount: 450000}

	d, err := g.Decide(context.Background(), cs, 2)
	require.Error(t, err)
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, engine.ErrLookupFailure))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDecide_Tier2WithoutLookup(t *testing.T) {
	g := engine.NewGenerator(nil)
	_, err := g.Decide(context.Background(), models.Case{CaseType: models.CaseTypeDamages}, 2)
	assert.True(t, errors.Is(err, engine.ErrLookupFailure))
}

func TestDecide_PrecedentLimit(t *testing.T) {
	var gotLimit int
	var gotType string
	lookup := engine.PrecedentLookupFunc(func(_ context.Context, caseType string, limit int) ([]models.Precedent, error) {
		gotType, gotLimit = caseType, limit
		return nil, nil
	})

	g := engine.NewGenerator(lookup)
	_, err := g.Decide(context.Background(), models.Case{CaseType: models.CaseTypeDamages, ClaimedAmount: 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultPrecedentLimit, gotLimit)
	assert.Equal(t, models.CaseTypeDamages, gotType)

	g = engine.NewGenerator(lookup, engine.WithPrecedentLimit(5))
	_, err = g.Decide(context.Background(), models.Case{CaseType: models.CaseTypeDamages, ClaimedAmount: 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, gotLimit)
}

func TestDecide_Tier3Perspectives(t *testing.T) {
	g := engine.NewGenerator(nil)
	cs := models.Case{CaseType: models.CaseTypeDamages, ClaimedAmount: 450000}

	d, err := g.Decide(context.Background(), cs, 3)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionKindHuman, d.Kind)
	assert.Equal(t, models.OutcomeRequiresDeliberation, d.Outcome)
	assert.Nil(t, d.AwardedAmount)
	assert.Equal(t, 0.70, d.Confidence)
	require.Len(t, d.Perspectives, 3)

	assert.Equal(t, models.PerspectiveFavorClaimant, d.Perspectives[0].Label)
	assert.Equal(t, 450000.0, d.Perspectives[0].ProposedAmount)
	assert.Equal(t, models.OutcomeGrants, d.Perspectives[0].ProposedOutcome)

	assert.Equal(t, models.PerspectiveBalanced, d.Perspectives[1].Label)
	assert.Equal(t, 315000.0, d.Perspectives[1].ProposedAmount)
	assert.Equal(t, models.OutcomeGrantsPartial, d.Perspectives[1].ProposedOutcome)

	assert.Equal(t, models.PerspectiveFavorRespondent, d.Perspectives[2].Label)
	assert.Equal(t, 0.0, d.Perspectives[2].ProposedAmount)
	assert.Equal(t, models.OutcomeRejects, d.Perspectives[2].ProposedOutcome)

	for _, p := range d.Perspectives {
		assert.Len(t, p.Arguments, 5)
	}

	assert.Contains(t, d.Justification, "PERSPECTIVE 1: Interpretation favorable to the claimant")
	assert.Contains(t, d.Justification, "PERSPECTIVE 3: Interpretation favorable to the respondent")
	assert.Contains(t, d.Justification, strings.Repeat("=", 60))
	assert.Contains(t, d.Justification, "$315,000.00")
}

func TestDecide_Tier3ArgumentsAreNotShared(t *testing.T) {
	g := engine.NewGenerator(nil)
	cs := models.Case{CaseType: models.CaseTypeDamages, ClaimedAmount: 1000}

	first, err := g.Decide(context.Background(), cs, 3)
	require.NoError(t, err)
	first.Perspectives[0].Arguments[0] = "changed"

	second, err := g.Decide(context.Background(), cs, 3)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", second.Perspectives[0].Arguments[0])
}

func TestDecide_Tier4(t *testing.T) {
	g := engine.NewGenerator(nil)
	cs := models.Case{
		CaseType:      models.CaseTypeDamages,
		ClaimedAmount: 1200000,
		Facts:         "Claim against the municipality over a right to housing",
	}

	d, err := g.Decide(context.Background(), cs, 4)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionKindDeliberative, d.Kind)
	assert.Equal(t, models.OutcomeRequiresDeliberationExpanded, d.Outcome)
	assert.Nil(t, d.AwardedAmount)
	assert.Equal(t, 0.60, d.Confidence)
	assert.Contains(t, d.Justification, "CASE DESCRIPTION:\n"+cs.Facts+"\n")
	assert.Contains(t, d.Justification, "Amicus curiae")
}

func TestDecide_InvalidTier(t *testing.T) {
	g := engine.NewGenerator(nil)
	cs := models.Case{CaseType: models.CaseTypeDamages, ClaimedAmount: 1000}

	for _, tier := range []int{0, 5, -1} {
		d, err := g.Decide(context.Background(), cs, tier)
		assert.Nil(t, d)
		assert.True(t, errors.Is(err, engine.ErrInvalidTier), "tier %d", tier)
	}
}

func TestDecide_MissingCaseType(t *testing.T) {
	g := engine.NewGenerator(nil)

	d, err := g.Decide(context.Background(), models.Case{ClaimedAmount: 1000}, 1)
	assert.Nil(t, d)
	require.True(t, errors.Is(err, engine.ErrMissingField))

	var fieldErr *engine.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "case_type", fieldErr.Field)
}

func TestDecide_Deterministic(t *testing.T) {
	g := engine.NewGenerator(fixedLookup{precedents: []models.Precedent{samplePrecedent()}})
	cs := models.Case{CaseType: models.CaseTypeDamages, ClaimedAmount: 321000, Facts: "facts"}

	for tier := 1; tier <= 4; tier++ {
		a, err := g.Decide(context.Background(), cs, tier)
		require.NoError(t, err)
		b, err := g.Decide(context.Background(), cs, tier)
		require.NoError(t, err)
		assert.Equal(t, a, b, "tier %d", tier)
	}
}
