package prompt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"comidacasa/internal/menu"

	"github.com/google/generative-ai-go/genai"
)

func testProfiles() []menu.Profile {
	return []menu.Profile{
		{ID: "1", Name: "Adolescente 1", Age: 15, Gender: menu.GenderMale, ActivityLevel: menu.ActivityHigh, Notes: "Jugador de baloncesto"},
		{ID: "2", Name: "Adolescente 2", Age: 12, Gender: menu.GenderFemale, ActivityLevel: menu.ActivityHigh, Notes: "Jugadora de baloncesto"},
		{ID: "3", Name: "Adulto 1", Age: 50, Gender: menu.GenderMale, ActivityLevel: menu.ActivityModerate},
		{ID: "4", Name: "Adulto 2", Age: 50, Gender: menu.GenderFemale, ActivityLevel: menu.ActivityModerate},
	}
}

func TestPlanPrompt(t *testing.T) {
	profiles := testProfiles()
	start := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)

	t.Run("ProfileLinesInInputOrder", func(t *testing.T) {
		req, err := Plan(profiles, nil, 7, start, false)
		if err != nil {
			t.Fatalf("Plan failed: %v", err)
		}

		lastIdx := -1
		for _, p := range profiles {
			line := fmt.Sprintf("- %s: %d años %s, nivel de actividad: %s.", p.Name, p.Age, p.Gender, p.ActivityLevel)
			idx := strings.Index(req.Instructions, line)
			if idx == -1 {
				t.Fatalf("Missing profile line for %s", p.Name)
			}
			if idx < lastIdx {
				t.Errorf("Profile %s rendered out of input order", p.Name)
			}
			lastIdx = idx
		}
	})

	t.Run("EmptyNotesGetPlaceholder", func(t *testing.T) {
		req, _ := Plan(profiles, nil, 7, start, false)
		if !strings.Contains(req.Instructions, "Adulto 1: 50 años male, nivel de actividad: moderate. Notas: ninguna") {
			t.Error("Expected explicit 'ninguna' placeholder for empty notes")
		}
	})

	t.Run("FamilySizeMatchesProfileCount", func(t *testing.T) {
		req, _ := Plan(profiles, nil, 7, start, false)
		if !strings.Contains(req.Instructions, "número de personas en la familia (4)") {
			t.Error("Expected family size 4 in the instructions")
		}

		req, _ = Plan(profiles[:2], nil, 7, start, false)
		if !strings.Contains(req.Instructions, "número de personas en la familia (2)") {
			t.Error("Expected family size to track the profile count exactly")
		}
	})

	t.Run("BreakfastDirective", func(t *testing.T) {
		req, _ := Plan(profiles, nil, 7, start, false)
		if !strings.Contains(req.Instructions, "NO generes desayunos") {
			t.Error("Expected explicit breakfast exclusion directive")
		}

		req, _ = Plan(profiles, nil, 7, start, true)
		if !strings.Contains(req.Instructions, "incluye sugerencias para el desayuno") {
			t.Error("Expected explicit breakfast inclusion directive")
		}
		if strings.Contains(req.Instructions, "NO generes desayunos") {
			t.Error("Did not expect the exclusion directive when breakfasts are included")
		}
	})

	t.Run("NoRecipesMarker", func(t *testing.T) {
		req, _ := Plan(profiles, nil, 7, start, false)
		if !strings.Contains(req.Instructions, noRecipesMarker) {
			t.Error("Expected explicit no-recipes marker when no hints are supplied")
		}
	})

	t.Run("RecipesRendered", func(t *testing.T) {
		recipes := []menu.Recipe{{ID: "r1", Name: "Paella de la abuela", Ingredients: "arroz, pollo, azafrán"}}
		req, _ := Plan(profiles, recipes, 7, start, false)
		if !strings.Contains(req.Instructions, "- Paella de la abuela: arroz, pollo, azafrán") {
			t.Error("Expected recipe hint to be rendered")
		}
		if strings.Contains(req.Instructions, noRecipesMarker) {
			t.Error("Did not expect the no-recipes marker when hints exist")
		}
	})

	t.Run("DurationAndStartDate", func(t *testing.T) {
		req, _ := Plan(profiles, nil, 14, start, false)
		if !strings.Contains(req.Instructions, "para 14 días comenzando el 2026-07-27") {
			t.Error("Expected duration and ISO start date in the task text")
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, _ := Plan(profiles, nil, 7, start, false)
		b, _ := Plan(profiles, nil, 7, start, false)
		if a.Instructions != b.Instructions {
			t.Error("Expected identical inputs to render identical instructions")
		}
	})

	t.Run("SchemaIsNameOnly", func(t *testing.T) {
		req, _ := Plan(profiles, nil, 7, start, false)
		if req.Schema == nil || req.Schema.Type != genai.TypeArray {
			t.Fatal("Expected an array schema")
		}
		day := req.Schema.Items
		meal := day.Properties["comida"]
		if _, ok := meal.Properties["ingredientes"]; ok {
			t.Error("Initial plan schema must not request ingredients")
		}
		if _, ok := meal.Properties["nombre"]; !ok {
			t.Error("Initial plan schema must request the dish name")
		}
	})

	t.Run("RejectsEmptyProfiles", func(t *testing.T) {
		if _, err := Plan(nil, nil, 7, start, false); err == nil {
			t.Fatal("Expected an error for zero profiles")
		}
	})
}

func TestDetailsPrompt(t *testing.T) {
	req, err := Details("Paella Valenciana", 4)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}

	if !strings.Contains(req.Instructions, `"Paella Valenciana"`) {
		t.Error("Expected the dish name in the instructions")
	}
	if !strings.Contains(req.Instructions, "familia de 4 personas") {
		t.Error("Expected the family size in the instructions")
	}

	schema := req.Schema
	if schema.Type != genai.TypeObject {
		t.Fatal("Expected an object schema")
	}
	for _, field := range []string{"nombre", "ingredientes", "preparacion", "infoNutricional", "comentarioMotivador"} {
		found := false
		for _, r := range schema.Required {
			if r == field {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %q to be a required schema field", field)
		}
	}
	nutrition := schema.Properties["infoNutricional"]
	if len(nutrition.Required) != 4 {
		t.Errorf("Expected 4 required nutrition fields, got %d", len(nutrition.Required))
	}

	if _, err := Details("", 4); err == nil {
		t.Error("Expected an error for an empty meal name")
	}
	if _, err := Details("Paella", 0); err == nil {
		t.Error("Expected an error for a non-positive family size")
	}
}

func TestShoppingListPrompt(t *testing.T) {
	profiles := testProfiles()
	namedOnly := menu.MenuPlan{
		{Day: "Lunes", Date: "2026-07-27", Lunch: &menu.Meal{Name: "Paella"}, Dinner: &menu.Meal{Name: "Gazpacho"}},
	}
	detailed := menu.MenuPlan{
		{
			Day:  "Lunes",
			Date: "2026-07-27",
			Lunch: &menu.Meal{
				Name:        "Paella",
				Ingredients: []string{"400g de arroz", "1 cebolla"},
				Preparation: "1. Cocina.",
			},
			Dinner: &menu.Meal{
				Name:        "Gazpacho",
				Ingredients: []string{"1kg de tomates", "2 cebollas"},
				Preparation: "1. Tritura.",
			},
		},
	}

	t.Run("NameFallbackWhenNoDetails", func(t *testing.T) {
		req, err := ShoppingList(namedOnly, profiles)
		if err != nil {
			t.Fatalf("ShoppingList failed: %v", err)
		}
		if !strings.Contains(req.Instructions, "calcula los ingredientes y las cantidades exactas necesarias para 4 personas") {
			t.Error("Expected name-derivation fallback directive")
		}
		if !strings.Contains(req.Instructions, "Lunes - comida: Paella") {
			t.Error("Expected meal line for the named meal")
		}
	})

	t.Run("ConcreteIngredientsWhenDetailed", func(t *testing.T) {
		req, err := ShoppingList(detailed, profiles)
		if err != nil {
			t.Fatalf("ShoppingList failed: %v", err)
		}
		if !strings.Contains(req.Instructions, "ingredientes ya calculados: 400g de arroz; 1 cebolla") {
			t.Error("Expected concrete ingredient lists to be passed through")
		}
		if !strings.Contains(req.Instructions, "no vuelvas a estimarlos a partir del nombre del plato") {
			t.Error("Expected directive to use concrete ingredients as-is")
		}
	})

	t.Run("ConsolidationInstructions", func(t *testing.T) {
		req, _ := ShoppingList(detailed, profiles)
		if !strings.Contains(req.Instructions, "suma las cantidades totales") {
			t.Error("Expected quantity-summing instruction")
		}
		if !strings.Contains(req.Instructions, "categorías lógicas") {
			t.Error("Expected category-grouping instruction")
		}
		if !strings.Contains(req.Instructions, "ID único usando un UUID") {
			t.Error("Expected unique-id instruction")
		}
	})

	t.Run("RejectsEmptyInputs", func(t *testing.T) {
		if _, err := ShoppingList(nil, profiles); err == nil {
			t.Error("Expected an error for an empty plan")
		}
		if _, err := ShoppingList(namedOnly, nil); err == nil {
			t.Error("Expected an error for zero profiles")
		}
	})
}
