package engine

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"justicia-backend/models"

	"gopkg.in/yaml.v3"
)

//go:embed rules_default.yaml
var defaultRulesYAML []byte

// Case attributes a rule condition can inspect.
const (
	FieldClaimedAmount             = "claimed_amount"
	FieldEvidence                  = "evidence"
	FieldFacts                     = "facts"
	FieldCaseType                  = "case_type"
	FieldHasResponse               = "has_response"
	FieldRaisesConstitutionalIssue = "raises_constitutional_issue"
)

// Condition operators.
const (
	OpLessThan       = "lt"
	OpGreaterThan    = "gt"
	OpLessOrEqual    = "lte"
	OpGreaterOrEqual = "gte"
	OpEquals         = "equals"
	OpContainsAny    = "contains_any"
	OpIsTrue         = "is_true"
	OpIsFalse        = "is_false"
)

// Floor modes.
const (
	FloorMax      = "max"
	FloorOverride = "override"
)

var fieldOps = map[string][]string{
	FieldClaimedAmount:             {OpLessThan, OpGreaterThan, OpLessOrEqual, OpGreaterOrEqual},
	FieldEvidence:                  {OpContainsAny},
	FieldFacts:                     {OpContainsAny},
	FieldCaseType:                  {OpEquals, OpContainsAny},
	FieldHasResponse:               {OpIsTrue, OpIsFalse},
	FieldRaisesConstitutionalIssue: {OpIsTrue, OpIsFalse},
}

// RuleSet is an ordered, versioned classification rule table.
type RuleSet struct {
	Version string `yaml:"version" json:"version"`
	Rules   []Rule `yaml:"rules" json:"rules"`
	Bands   []Band `yaml:"bands" json:"bands"`
}

// Rule adds Score to the running total and may raise the floor tier when
// every condition in When holds.
type Rule struct {
	Name   string      `yaml:"name" json:"name"`
	Factor string      `yaml:"factor" json:"factor"`
	Score  int         `yaml:"score" json:"score"`
	Floor  *Floor      `yaml:"floor,omitempty" json:"floor,omitempty"`
	When   []Condition `yaml:"when" json:"when"`
}

// Floor forces a minimum tier. Mode "max" keeps the highest floor seen so
// far, "override" replaces it.
type Floor struct {
	Tier int    `yaml:"tier" json:"tier"`
	Mode string `yaml:"mode" json:"mode"`
}

// Condition is a single literal test against a case attribute.
type Condition struct {
	Field string   `yaml:"field" json:"field"`
	Op    string   `yaml:"op" json:"op"`
	Value *float64 `yaml:"value,omitempty" json:"value,omitempty"`
	Terms []string `yaml:"terms,omitempty" json:"terms,omitempty"`
}

// Band maps scores at or above MinScore to a tier. A nil MinScore matches
// every score and must be the last band.
type Band struct {
	MinScore   *int    `yaml:"min_score,omitempty" json:"min_score,omitempty"`
	Tier       int     `yaml:"tier" json:"tier"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
}

// DefaultRuleSet returns the built-in rule table.
func DefaultRuleSet() *RuleSet {
	rs, err := ParseRuleSet(bytes.NewReader(defaultRulesYAML))
	if err != nil {
		panic(fmt.Sprintf("engine: embedded rule table is invalid: %v", err))
	}
	return rs
}

// LoadRuleSet reads and validates a rule table from a YAML file.
func LoadRuleSet(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule table: %w", err)
	}
	defer f.Close()

	rs, err := ParseRuleSet(f)
	if err != nil {
		return nil, fmt.Errorf("rule table %s: %w", path, err)
	}
	return rs, nil
}

// ParseRuleSet decodes a YAML rule table and validates it.
func ParseRuleSet(r io.Reader) (*RuleSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var rs RuleSet
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("failed to decode rule table: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks that the table can be evaluated.
func (rs *RuleSet) Validate() error {
	var errs []error

	seen := make(map[string]bool)
	for i, rule := range rs.Rules {
		if rule.Name == "" {
			errs = append(errs, fmt.Errorf("rule %d: name is required", i))
		} else if seen[rule.Name] {
			errs = append(errs, fmt.Errorf("rule %s: duplicate name", rule.Name))
		}
		seen[rule.Name] = true

		if rule.Factor == "" {
			errs = append(errs, fmt.Errorf("rule %s: factor is required", rule.Name))
		}
		if len(rule.When) == 0 {
			errs = append(errs, fmt.Errorf("rule %s: at least one condition is required", rule.Name))
		}
		if rule.Floor != nil {
			if rule.Floor.Tier < 1 || rule.Floor.Tier > 4 {
				errs = append(errs, fmt.Errorf("rule %s: floor tier %d outside 1..4", rule.Name, rule.Floor.Tier))
			}
			if rule.Floor.Mode != FloorMax && rule.Floor.Mode != FloorOverride {
				errs = append(errs, fmt.Errorf("rule %s: unknown floor mode %q", rule.Name, rule.Floor.Mode))
			}
		}
		for _, cond := range rule.When {
			if err := cond.validate(); err != nil {
				errs = append(errs, fmt.Errorf("rule %s: %w", rule.Name, err))
			}
		}
	}

	if len(rs.Bands) == 0 {
		errs = append(errs, errors.New("at least one band is required"))
	}
	for i, band := range rs.Bands {
		if band.Tier < 1 || band.Tier > 4 {
			errs = append(errs, fmt.Errorf("band %d: tier %d outside 1..4", i, band.Tier))
		}
		if band.Confidence < 0 || band.Confidence > 1 {
			errs = append(errs, fmt.Errorf("band %d: confidence %.2f outside [0,1]", i, band.Confidence))
		}
		last := i == len(rs.Bands)-1
		if band.MinScore == nil && !last {
			errs = append(errs, fmt.Errorf("band %d: only the last band may omit min_score", i))
		}
		if band.MinScore != nil && last {
			errs = append(errs, errors.New("last band must omit min_score so every score maps to a tier"))
		}
		if i > 0 && band.MinScore != nil && rs.Bands[i-1].MinScore != nil && *band.MinScore >= *rs.Bands[i-1].MinScore {
			errs = append(errs, fmt.Errorf("band %d: min_score must be lower than the previous band", i))
		}
	}

	return errors.Join(errs...)
}

func (c Condition) validate() error {
	ops, ok := fieldOps[c.Field]
	if !ok {
		return fmt.Errorf("unknown field %q", c.Field)
	}
	allowed := false
	for _, op := range ops {
		if op == c.Op {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("operator %q not supported for field %s", c.Op, c.Field)
	}

	switch c.Op {
	case OpLessThan, OpGreaterThan, OpLessOrEqual, OpGreaterOrEqual:
		if c.Value == nil {
			return fmt.Errorf("%s %s: value is required", c.Field, c.Op)
		}
	case OpEquals, OpContainsAny:
		if len(c.Terms) == 0 {
			return fmt.Errorf("%s %s: terms are required", c.Field, c.Op)
		}
	}
	return nil
}

// Matches reports whether the condition holds for the case. Text
// comparisons for contains_any are case-insensitive literal substring tests;
// equals is exact.
func (c Condition) Matches(cs models.Case) bool {
	switch c.Field {
	case FieldClaimedAmount:
		return compareAmount(cs.ClaimedAmount, c.Op, *c.Value)
	case FieldEvidence:
		return containsAny(cs.Evidence, c.Terms)
	case FieldFacts:
		return containsAny(cs.Facts, c.Terms)
	case FieldCaseType:
		if c.Op == OpEquals {
			for _, term := range c.Terms {
				if cs.CaseType == term {
					return true
				}
			}
			return false
		}
		return containsAny(cs.CaseType, c.Terms)
	case FieldHasResponse:
		return cs.HasResponse == (c.Op == OpIsTrue)
	case FieldRaisesConstitutionalIssue:
		return cs.RaisesConstitutionalIssue == (c.Op == OpIsTrue)
	}
	return false
}

// Matches reports whether every condition of the rule holds.
func (r Rule) Matches(cs models.Case) bool {
	for _, cond := range r.When {
		if !cond.Matches(cs) {
			return false
		}
	}
	return true
}

// band returns the tier and confidence for a final score.
func (rs *RuleSet) band(score int) (int, float64) {
	for _, b := range rs.Bands {
		if b.MinScore == nil || score >= *b.MinScore {
			return b.Tier, b.Confidence
		}
	}
	last := rs.Bands[len(rs.Bands)-1]
	return last.Tier, last.Confidence
}

func compareAmount(amount float64, op string, threshold float64) bool {
	switch op {
	case OpLessThan:
		return amount < threshold
	case OpGreaterThan:
		return amount > threshold
	case OpLessOrEqual:
		return amount <= threshold
	case OpGreaterOrEqual:
		return amount >= threshold
	}
	return false
}

func containsAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
