package engine

import (
	"strings"
	"text/template"
	"time"
)

const excerptLength = 200

var templateFuncs = template.FuncMap{
	"money": FormatMoney,
	"inc":   func(i int) int { return i + 1 },
	"excerpt": func(s string) string {
		return excerpt(s, excerptLength)
	},
	"date":    func(t time.Time) string { return t.Format("2006-01-02") },
	"divider": func() string { return strings.Repeat("=", 60) },
}

var (
	classificationTmpl = newTemplate("classification", classificationText)
	collectionTmpl     = newTemplate("tier1_collection", tier1CollectionText)
	genericGrantTmpl   = newTemplate("tier1_generic", tier1GenericText)
	precedentTmpl      = newTemplate("tier2_precedent", tier2PrecedentText)
	noPrecedentTmpl    = newTemplate("tier2_no_precedent", tier2NoPrecedentText)
	perspectivesTmpl   = newTemplate("tier3_perspectives", tier3Text)
	deliberationTmpl   = newTemplate("tier4_deliberation", tier4Text)
)

var tierHeaders = map[int]string{
	1: "TIER 1 - ROUTINE CASE (Automatic resolution)",
	2: "TIER 2 - COMPLEX CASE (System suggests, quick human review)",
	3: "TIER 3 - DIFFICULT CASE (Human deliberation assisted by the system)",
	4: "TIER 4 - CONSTITUTIONAL CASE (Expanded deliberation)",
}

var tierExplanations = map[int]string{
	1: `This case can be resolved automatically because it presents:
- Clear and undisputed facts
- Sufficient and conclusive evidence
- Uniform applicable case law
`,
	2: `This case requires human review because it presents some complexity,
but it can be resolved quickly with the system's assistance.
`,
	3: `This case requires full human deliberation because it presents:
- Complex questions of fact or law
- The need for sophisticated legal assessment
The system will assist by generating multiple argumentative perspectives.
`,
	4: `This case requires the highest level of deliberation because it involves:
- Constitutional questions or fundamental rights
- The need for expanded participation
`,
}

type classificationData struct {
	Header      string
	Score       int
	Factors     []string
	Explanation string
}

const classificationText = `{{.Header}}

Classification score: {{.Score}}

Factors considered:
{{range $i, $f := .Factors}}{{inc $i}}. {{$f}}
{{end}}
{{.Explanation}}`

const tier1CollectionText = `
RULING:

I. The MONEY COLLECTION claim filed is GRANTED.

II. The respondent is ORDERED to pay the claimant the sum of ${{money .ClaimedAmount}} as principal,
plus interest from default until actual payment, at the rate set by the Central Bank
(estimated total ${{money .AwardedAmount}}).

III. COSTS are imposed on the losing respondent.

GROUNDS:

1. PROVEN FACTS: The existence of the obligation is established by a promissory note (pagaré)
duly signed by the respondent (Art. 1816 CCyC - executory title).

2. AUTOMATIC DEFAULT: Since the obligation had a fixed term, the debtor fell into default
automatically upon maturity (Art. 886 CCyC).

3. NO SUBSTANTIAL DEFENSE: The respondent has raised no admissible defense capable of
defeating the executory claim.

4. APPLICABLE LAW:
   - Art. 729 CCyC: Concept of obligation
   - Art. 730 CCyC: Effects of non-performance
   - Art. 1816 CCyC: Promissory note as executory title

5. INTEREST: Default interest accrues from maturity until actual payment as an accessory
of the principal obligation (Arts. 765-768 CCyC).

6. COSTS: Art. 130 CPCC provides that costs are borne by the losing party, the respondent
having failed to perform without justification.

For all the foregoing, IT IS SO ORDERED as set out above.
`

const tier1GenericText = `
RULING:

I. The claim filed is GRANTED.

II. The respondent is ORDERED to pay the claimant the sum claimed of ${{money .ClaimedAmount}}
plus interest and costs.

BASIC GROUNDS:

The facts alleged are sufficiently established by the documentary evidence submitted.
The respondent has not rebutted the claimant's claim.
The claim is granted under articles 1716 and 1740 CCyC.
`

const tier2PrecedentText = `
SUGGESTED RESOLUTION (Requires human review)

CASE ANALYSIS:

This case is similar to the precedent "{{.Precedent.Title}}"
({{.Precedent.IssuingBody}}, {{date .Precedent.DecisionDate}}).

COMPARABLE FACTS:
- Current case: {{excerpt .Facts}}
- Precedent: {{excerpt .Precedent.SummarizedFacts}}

APPLICABLE CASE-LAW CRITERIA:
{{.Precedent.AppliedPrinciples}}

SUGGESTED DECISION:
Partially grant the claim for ${{money .SuggestedAmount}},
considering proportionality with similar cases and the particular circumstances.

SUGGESTED ARTICLES:
- Art. 1716 CCyC (Duty to compensate)
- Art. 1740 CCyC (Full compensation)
- Art. 1757 CCyC (if strict liability applies)

NOTE FOR THE REVIEWING JUDGE:
This case requires your particular assessment of:
1. The weight of the evidence submitted
2. Any specific mitigating or aggravating circumstances
3. The proportionality of the suggested amount to the damage actually proven

Confidence of the suggestion: 85%
`

const tier2NoPrecedentText = `
SUGGESTED RESOLUTION (No direct precedents)

There are no directly applicable precedents for this case in the reference database.

Careful analysis is suggested of:
1. General principles of the applicable law
2. Prevailing legal doctrine on the subject
3. Proportionality of the claim

RECOMMENDATION: Detailed human review required.
`

const tier3Text = `
MULTI-PERSPECTIVE ANALYSIS FOR DELIBERATION

This case requires human deliberation. The system presents three argumentative perspectives:

{{range $i, $p := .Perspectives}}
{{divider}}
PERSPECTIVE {{inc $i}}: {{$p.Focus}}
{{divider}}
Proposed outcome: {{$p.ProposedOutcome}}
Proposed amount: ${{money $p.ProposedAmount}}

ARGUMENTS:
{{range $j, $a := $p.Arguments}}{{inc $j}}. {{$a}}
{{end}}
{{end}}
RECOMMENDATION FOR THE JUDGE:

This case presents complexities that require your expert legal assessment.
It is suggested to:
1. Carefully analyze the evidence produced
2. Consider the three perspectives presented
3. Weigh the conflicting principles according to your judgment
4. Clearly state the grounds for the decision adopted

The system remains available for any additional analysis required.
`

const tier4Text = `
TIER 4 CASE - EXPANDED CONSTITUTIONAL DELIBERATION

This case raises questions of particular relevance that go beyond the individual interest
of the parties and warrant a special deliberative procedure.

CASE DESCRIPTION:
{{.Facts}}

QUESTIONS FOR DELIBERATION:

1. CONSTITUTIONAL QUESTION RAISED:
   [Requires specific identification by the court]

2. PRINCIPLES IN TENSION:
   - Right/principle A vs. Right/principle B
   - [To be completed for the specific case]

3. RELEVANT PRECEDENTS:
   [Requires analysis of applicable constitutional case law]

4. SYSTEMIC IMPACT:
   This decision may set a precedent for similar future cases.

SUGGESTED PROCEDURE:

1. Call a public hearing with the participation of:
   - The parties to the proceeding
   - Amicus curiae (where appropriate)
   - Interested civil society organizations

2. Request reports from:
   - The Public Prosecutor's Office
   - The Ombudsman's Office
   - Other relevant bodies

3. Extended deadline for closing briefs and grounds

4. Deliberation by a collegiate court (where the judicial organization so provides)

IMPORTANT NOTE:
This tier does not admit automated or assisted resolution.
It requires the full exercise of the human judicial function with all guarantees.

The system only provides structure and analysis tools, not decision suggestions.
`

func newTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderClassification(tier, score int, factors []string) (string, error) {
	return render(classificationTmpl, classificationData{
		Header:      tierHeaders[tier],
		Score:       score,
		Factors:     factors,
		Explanation: tierExplanations[tier],
	})
}

// excerpt keeps the first n runes of s followed by an ellipsis.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
