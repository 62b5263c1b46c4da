//go:build property

package engine_test

import (
	"testing"

	"justicia-backend/engine"
	"justicia-backend/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var (
	evidenceSamples = []any{"", "pagaré", "signed contract", "photos of the damage", "a prior judgment", "witness list"}
	factsSamples    = []any{"", "plain loan default", "disputed invoice", "technical failure", "a novel question", "conflicting accounts and no precedent"}
	caseTypes       = []any{models.CaseTypeMoneyCollection, models.CaseTypeDamages, "eviction"}
)

func genCase() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(caseTypes...),
		gen.Float64Range(0, 2_000_000),
		gen.OneConstOf(factsSamples...),
		gen.OneConstOf(evidenceSamples...),
		gen.Bool(),
		gen.Bool(),
	).Map(func(v []any) models.Case {
		return models.Case{
			CaseType:                  v[0].(string),
			ClaimedAmount:             v[1].(float64),
			Facts:                     v[2].(string),
			Evidence:                  v[3].(string),
			HasResponse:               v[4].(bool),
			RaisesConstitutionalIssue: v[5].(bool),
		}
	})
}

// Property: the tier is always within 1..4 and confidence within [0,1].
func TestClassifyBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)
	c := engine.NewClassifier()

	properties.Property("tier and confidence stay in range", prop.ForAll(
		func(cs models.Case) bool {
			res, err := c.Classify(cs)
			if err != nil {
				return false
			}
			return res.Tier >= 1 && res.Tier <= 4 && res.Confidence >= 0 && res.Confidence <= 1
		},
		genCase(),
	))

	properties.TestingRun(t)
}

// Property: a constitutional issue always yields tier 4.
func TestClassifyConstitutionalIsTier4(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)
	c := engine.NewClassifier()

	properties.Property("constitutional cases are tier 4", prop.ForAll(
		func(cs models.Case) bool {
			cs.RaisesConstitutionalIssue = true
			res, err := c.Classify(cs)
			return err == nil && res.Tier == 4
		},
		genCase(),
	))

	properties.TestingRun(t)
}

// Property: Classify(cs) == Classify(cs).
func TestClassifyDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	c := engine.NewClassifier()

	properties.Property("classification is deterministic", prop.ForAll(
		func(cs models.Case) bool {
			a, errA := c.Classify(cs)
			b, errB := c.Classify(cs)
			if errA != nil || errB != nil {
				return false
			}
			if a.Tier != b.Tier || a.Score != b.Score || a.Confidence != b.Confidence || a.Justification != b.Justification {
				return false
			}
			return len(a.Factors) == len(b.Factors)
		},
		genCase(),
	))

	properties.TestingRun(t)
}

// Property: adding a complexity marker never lowers the tier.
func TestClassifyComplexityIsMonotone(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)
	c := engine.NewClassifier()

	properties.Property("disputed facts never lower the tier", prop.ForAll(
		func(cs models.Case) bool {
			before, err := c.Classify(cs)
			if err != nil {
				return false
			}
			cs.Facts += " disputed"
			after, err := c.Classify(cs)
			if err != nil {
				return false
			}
			return after.Tier >= before.Tier && after.Tier >= 2
		},
		genCase(),
	))

	properties.TestingRun(t)
}

// Property: tier 1 and 2 drafts never award more than the claim plus interest.
func TestDecideAmountsAreBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	g := engine.NewGenerator(fixedLookup{precedents: []models.Precedent{samplePrecedent()}})

	properties.Property("awarded amount is bounded by the claim", prop.ForAll(
		func(cs models.Case, tier int) bool {
			d, err := g.Decide(t.Context(), cs, tier)
			if err != nil || d.AwardedAmount == nil {
				return false
			}
			return *d.AwardedAmount >= 0 && *d.AwardedAmount <= cs.ClaimedAmount*1.15+0.01
		},
		genCase(),
		gen.IntRange(1, 2),
	))

	properties.TestingRun(t)
}
