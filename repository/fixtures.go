package repository

import (
	"time"

	"justicia-backend/models"
)

// DemoUser is a user seeded for local use. Password is plaintext and is
// hashed by the caller before storage.
type DemoUser struct {
	Email    string
	Password string
	Name     string
	Role     models.UserRole
}

// DemoUsers returns the accounts created by the seeding tool.
func DemoUsers() []DemoUser {
	return []DemoUser{
		{Email: "claimant@justicia.local", Password: "claimant123", Name: "María González", Role: models.RoleClaimant},
		{Email: "official@justicia.local", Password: "official123", Name: "Carlos Pérez", Role: models.RoleOfficial},
		{Email: "judge@justicia.local", Password: "judge123", Name: "Dra. Laura Fernández", Role: models.RoleJudge},
	}
}

// DemoArticles returns the articles the decision drafts cite.
func DemoArticles() []models.LegalArticle {
	return []models.LegalArticle{
		{ArticleNumber: "729", Code: "CCyC", Title: "Good faith", Text: "Debtor and creditor must act with care, foresight and according to the requirements of good faith."},
		{ArticleNumber: "730", Code: "CCyC", Title: "Effects of the obligation", Text: "The obligation entitles the creditor to employ legal means to obtain from the debtor what is owed."},
		{ArticleNumber: "886", Code: "CCyC", Title: "Debtor default", Text: "Default of the debtor occurs automatically upon expiry of the term agreed for performance."},
		{ArticleNumber: "1716", Code: "CCyC", Title: "Duty to compensate", Text: "Breach of the duty not to harm another, or of an obligation, gives rise to compensation for the damage caused."},
		{ArticleNumber: "1740", Code: "CCyC", Title: "Full compensation", Text: "Compensation for the damage must be full. It consists in restoring the injured party to the situation prior to the harm."},
		{ArticleNumber: "1757", Code: "CCyC", Title: "Act of things and dangerous activities", Text: "Every person answers for the damage caused by the risk or defect of things, or of activities that are dangerous by nature."},
		{ArticleNumber: "1816", Code: "CCyC", Title: "Promissory instruments", Text: "The bearer of a title in good faith is entitled to payment of the obligation it incorporates."},
		{ArticleNumber: "130", Code: "CPCC", Title: "Costs", Text: "The losing party shall pay the costs of the other party, even when not requested."},
		{ArticleNumber: "377", Code: "CPCC", Title: "Burden of proof", Text: "Each party must prove the factual premise of the rule it invokes as the basis of its claim or defense."},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DemoPrecedents returns sample rulings used for tier 2 suggestions.
func DemoPrecedents() []models.Precedent {
	return []models.Precedent{
		{
			Title:             "Rodríguez v. Seguros del Plata",
			IssuingBody:       "Civil Court of Appeals, Chamber A",
			DecisionDate:      date(2023, time.March, 14),
			CaseType:          models.CaseTypeDamages,
			SummarizedFacts:   "Rear-end collision at a traffic light. The insurer disputed the extent of the injuries but not liability.",
			Outcome:           "granted in part",
			ApproximateAmount: 420000,
			AppliedPrinciples: "Strict liability of the owner and keeper of the vehicle (art. 1757 CCyC). Full compensation limited to damage actually proven.",
		},
		{
			Title:             "Martínez v. Consorcio Av. Libertador 1200",
			IssuingBody:       "Civil Court No. 45",
			DecisionDate:      date(2022, time.September, 2),
			CaseType:          models.CaseTypeDamages,
			SummarizedFacts:   "Water leak from the common areas of a building damaged the claimant's apartment.",
			Outcome:           "granted",
			ApproximateAmount: 310000,
			AppliedPrinciples: "Duty of the building association to maintain common areas. Compensation for repair costs and loss of use.",
		},
		{
			Title:             "Banco Regional v. López",
			IssuingBody:       "Commercial Court No. 8",
			DecisionDate:      date(2023, time.June, 21),
			CaseType:          models.CaseTypeMoneyCollection,
			SummarizedFacts:   "Collection of an overdue promissory note signed by the respondent, who did not appear.",
			Outcome:           "granted",
			ApproximateAmount: 180000,
			AppliedPrinciples: "The promissory note is an executory title. Default occurs automatically on maturity (art. 886 CCyC).",
		},
		{
			Title:             "Distribuidora Norte v. Almacén San José",
			IssuingBody:       "Commercial Court No. 3",
			DecisionDate:      date(2021, time.November, 30),
			CaseType:          models.CaseTypeMoneyCollection,
			SummarizedFacts:   "Unpaid invoices for goods delivered under a supply agreement. Delivery receipts were signed.",
			Outcome:           "granted",
			ApproximateAmount: 250000,
			AppliedPrinciples: "Signed delivery receipts prove performance. Interest accrues from the due date of each invoice.",
		},
	}
}

// DemoCriteria returns descriptions of the classification factors.
func DemoCriteria() []models.ClassificationCriterion {
	return []models.ClassificationCriterion{
		{Factor: "low_amount", Description: "Claimed amount below $300,000", Weight: 2, MinimumTier: 1},
		{Factor: "high_amount", Description: "Claimed amount above $800,000", Weight: -1, MinimumTier: 1},
		{Factor: "documentary_evidence", Description: "Conclusive documentary evidence such as a promissory note, signed contract or judgment", Weight: 3, MinimumTier: 1},
		{Factor: "respondent_default", Description: "The respondent did not answer or admits the facts", Weight: 3, MinimumTier: 1},
		{Factor: "executory_collection", Description: "Money collection backed by an executory title", Weight: 3, MinimumTier: 1},
		{Factor: "factual_complexity", Description: "Disputed facts, contradictory witnesses or technical evidence", Weight: -2, MinimumTier: 2},
		{Factor: "constitutional_issue", Description: "The case raises a constitutional question or fundamental rights", Weight: -4, MinimumTier: 4},
		{Factor: "novel_issue", Description: "Novel legal question without clear precedent", Weight: -3, MinimumTier: 3},
	}
}
