package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Persona identifies which expert the model should play.
// Values outside the recognized set are valid and resolve to the fallback expert.
type Persona string

const (
	// CareerAdvisor is an IT / generative-AI career change advisor.
	CareerAdvisor Persona = "career_advisor"

	// FinancialPlanner is a household finance and life-plan advisor familiar
	// with Japanese tax and social insurance.
	FinancialPlanner Persona = "financial_planner"
)

// Display labels, as shown on the selector.
const (
	careerAdvisorLabel    = "キャリアアドバイザー（IT・生成AI転職）"
	financialPlannerLabel = "ファイナンシャルプランナー（家計・ライフプラン）"
	fallbackLabel         = "専門家"
)

// order is the display order of the recognized personas.
var order = []Persona{CareerAdvisor, FinancialPlanner}

var labels = map[Persona]string{
	CareerAdvisor:    careerAdvisorLabel,
	FinancialPlanner: financialPlannerLabel,
}

// Option is a selectable persona.
type Option struct {
	ID    Persona `json:"id"`
	Label string  `json:"label"`
}

// Options returns the recognized personas in display order.
func Options() []Option {
	return lo.Map(order, func(p Persona, _ int) Option {
		return Option{ID: p, Label: p.Label()}
	})
}

// Known reports whether p is one of the recognized personas.
func (p Persona) Known() bool {
	_, ok := labels[p]
	return ok
}

// Label returns the display label, or a generic label for unrecognized values.
func (p Persona) Label() string {
	if label, ok := labels[p]; ok {
		return label
	}
	return fallbackLabel
}

// Parse maps a persona ID or display label to a Persona. Matching on IDs is
// case-insensitive. Anything else is returned unchanged; it is not an error.
func Parse(s string) Persona {
	trimmed := strings.TrimSpace(s)
	for _, p := range order {
		if strings.EqualFold(trimmed, string(p)) || trimmed == labels[p] {
			return p
		}
	}
	return Persona(s)
}

// ErrMissingField is returned by [Build] when a required input is empty.
var ErrMissingField = errors.New("prompt: missing required field")

// missingField wraps [ErrMissingField] with the specific field name.
func missingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
