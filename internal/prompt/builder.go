// Package prompt renders domain state into the natural-language instructions
// and response schemas sent to the generative model. All builders are pure:
// the same inputs always produce byte-identical instructions.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"comidacasa/internal/menu"

	"github.com/google/generative-ai-go/genai"
)

//go:embed plan_prompt.md
var planPrompt string

//go:embed details_prompt.md
var detailsPrompt string

//go:embed shopping_prompt.md
var shoppingPrompt string

// Request is a fully built model request: the instruction text plus the
// schema the response must conform to.
type Request struct {
	Instructions string
	Schema       *genai.Schema
}

const (
	noRecipesMarker = "No se proporcionaron recetas familiares específicas."
	recipesHeader   = "Considera incluir estas recetas familiares si encajan en el plan nutricional:"

	breakfastInclude = "Por favor, incluye sugerencias para el desayuno."
	breakfastExclude = "NO generes desayunos. Genera únicamente 'comida' (almuerzo) y 'cena'."
)

type planPromptData struct {
	ProfileLines       []string
	FamilySize         int
	BreakfastDirective string
	RecipesSection     string
	Duration           int
	StartDate          string
}

// Plan builds the initial plan-generation request. The schema constrains the
// output to day label, date and meal names only; detail is fetched lazily
// per meal.
func Plan(profiles []menu.Profile, recipes []menu.Recipe, duration int, startDate time.Time, includeBreakfasts bool) (Request, error) {
	if len(profiles) == 0 {
		return Request{}, fmt.Errorf("at least one profile is required")
	}
	if duration <= 0 {
		return Request{}, fmt.Errorf("duration must be positive, got %d", duration)
	}

	directive := breakfastExclude
	if includeBreakfasts {
		directive = breakfastInclude
	}

	data := planPromptData{
		ProfileLines:       profileLines(profiles),
		FamilySize:         len(profiles),
		BreakfastDirective: directive,
		RecipesSection:     recipesSection(recipes),
		Duration:           duration,
		StartDate:          startDate.Format("2006-01-02"),
	}

	text, err := render("plan", planPrompt, data)
	if err != nil {
		return Request{}, err
	}
	return Request{Instructions: text, Schema: planSchema()}, nil
}

type detailsPromptData struct {
	MealName   string
	FamilySize int
}

// Details builds the detail-expansion request for one named dish.
func Details(mealName string, familySize int) (Request, error) {
	if strings.TrimSpace(mealName) == "" {
		return Request{}, fmt.Errorf("meal name is required")
	}
	if familySize <= 0 {
		return Request{}, fmt.Errorf("family size must be positive, got %d", familySize)
	}

	text, err := render("details", detailsPrompt, detailsPromptData{
		MealName:   mealName,
		FamilySize: familySize,
	})
	if err != nil {
		return Request{}, err
	}
	return Request{Instructions: text, Schema: detailsSchema()}, nil
}

type shoppingPromptData struct {
	FamilySize        int
	MealLines         []string
	QuantityDirective string
}

// ShoppingList builds the consolidation request for a generated plan. Meals
// already expanded client-side contribute their concrete ingredient lists so
// the model does not re-derive them from dish names; name-only meals fall
// back to derivation by name and family size.
func ShoppingList(plan menu.MenuPlan, profiles []menu.Profile) (Request, error) {
	if len(plan) == 0 {
		return Request{}, fmt.Errorf("plan is empty")
	}
	if len(profiles) == 0 {
		return Request{}, fmt.Errorf("at least one profile is required")
	}

	lines, allDetailed := mealLines(plan)
	familySize := len(profiles)

	directive := fmt.Sprintf("Para cada plato del menú, calcula los ingredientes y las cantidades exactas necesarias para %d personas. Cuando un plato ya indique sus ingredientes calculados, úsalos tal cual; no vuelvas a estimarlos a partir del nombre.", familySize)
	if allDetailed {
		directive = "Usa exactamente los ingredientes ya calculados que se indican para cada plato; no vuelvas a estimarlos a partir del nombre del plato."
	}

	text, err := render("shopping", shoppingPrompt, shoppingPromptData{
		FamilySize:        familySize,
		MealLines:         lines,
		QuantityDirective: directive,
	})
	if err != nil {
		return Request{}, err
	}
	return Request{Instructions: text, Schema: shoppingSchema()}, nil
}

// profileLines renders one line per profile, in input order. Empty notes get
// an explicit placeholder so the model never has to guess.
func profileLines(profiles []menu.Profile) []string {
	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		notes := p.Notes
		if strings.TrimSpace(notes) == "" {
			notes = "ninguna"
		}
		lines = append(lines, fmt.Sprintf("- %s: %d años %s, nivel de actividad: %s. Notas: %s",
			p.Name, p.Age, p.Gender, p.ActivityLevel, notes))
	}
	return lines
}

// recipesSection emits an explicit no-hints marker when the user supplied no
// recipes, so the model does not infer intent from an empty section.
func recipesSection(recipes []menu.Recipe) string {
	if len(recipes) == 0 {
		return noRecipesMarker
	}
	var sb strings.Builder
	sb.WriteString(recipesHeader)
	for _, r := range recipes {
		sb.WriteString(fmt.Sprintf("\n- %s: %s", r.Name, r.Ingredients))
	}
	return sb.String()
}

func mealLines(plan menu.MenuPlan) (lines []string, allDetailed bool) {
	allDetailed = true
	for _, day := range plan {
		for _, slot := range []menu.Slot{menu.SlotLunch, menu.SlotDinner} {
			meal := day.Meal(slot)
			if meal == nil {
				continue
			}
			if meal.Detailed() {
				lines = append(lines, fmt.Sprintf("%s - %s: %s (ingredientes ya calculados: %s)",
					day.Day, slot, meal.Name, strings.Join(meal.Ingredients, "; ")))
			} else {
				lines = append(lines, fmt.Sprintf("%s - %s: %s", day.Day, slot, meal.Name))
				allDetailed = false
			}
		}
	}
	return lines, allDetailed
}

func render(name, body string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
