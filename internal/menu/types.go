package menu

// Gender is the categorical gender of a family member profile.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ActivityLevel is the categorical physical activity level of a profile.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityHigh      ActivityLevel = "high"
)

// Profile describes one family member whose dietary needs the plan covers.
type Profile struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	Notes         string        `json:"notes,omitempty"`
}

// Recipe is a user-supplied family recipe, used only as a planning hint.
type Recipe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Ingredients string `json:"ingredients"`
}

// NutritionFacts holds the estimated per-serving nutrition of a meal.
// The JSON field names match the original client wire format (es-ES).
type NutritionFacts struct {
	Calories float64 `json:"calorias"`
	Protein  float64 `json:"proteinas"`
	Carbs    float64 `json:"carbohidratos"`
	Fat      float64 `json:"grasas"`
}

// Meal is one planned dish. After initial plan generation only Name is set
// ("named" state); a successful detail fetch fills the remaining fields
// ("detailed" state). The transition is irreversible.
type Meal struct {
	Name        string          `json:"nombre"`
	Ingredients []string        `json:"ingredientes,omitempty"`
	Preparation string          `json:"preparacion,omitempty"`
	Nutrition   *NutritionFacts `json:"infoNutricional,omitempty"`
	Comment     string          `json:"comentarioMotivador,omitempty"`
}

// Detailed reports whether the meal has completed the named -> detailed
// transition.
func (m *Meal) Detailed() bool {
	return m != nil && len(m.Ingredients) > 0
}

// Slot identifies one of the two meal positions within a day.
type Slot string

const (
	SlotLunch  Slot = "comida"
	SlotDinner Slot = "cena"
)

// DayMenu is the plan for a single day. Either slot may be nil when the plan
// excludes that meal type.
type DayMenu struct {
	Day    string `json:"dia"`
	Date   string `json:"fecha"`
	Lunch  *Meal  `json:"comida"`
	Dinner *Meal  `json:"cena"`
}

// Meal returns the meal occupying the given slot, or nil.
func (d DayMenu) Meal(slot Slot) *Meal {
	switch slot {
	case SlotLunch:
		return d.Lunch
	case SlotDinner:
		return d.Dinner
	}
	return nil
}

// MenuPlan is the chronologically ordered multi-day plan. The order is fixed
// at generation time and must never be reordered downstream.
type MenuPlan []DayMenu

// Coordinate addresses one meal within a plan by day index and slot.
type Coordinate struct {
	DayIndex int
	Slot     Slot
}

// MealAt returns the meal at the coordinate, or nil when the coordinate is
// out of range or the slot is empty.
func (p MenuPlan) MealAt(c Coordinate) *Meal {
	if c.DayIndex < 0 || c.DayIndex >= len(p) {
		return nil
	}
	return p[c.DayIndex].Meal(c.Slot)
}

// ShoppingListItem is a single purchasable item with a unit-aware quantity
// description such as "500g de pechuga de pollo".
type ShoppingListItem struct {
	ID       string `json:"id"`
	Name     string `json:"nombre"`
	Quantity string `json:"cantidad"`
}

// ShoppingListCategory groups items under a supermarket section label.
// Categories with zero items may exist; renderers suppress them.
type ShoppingListCategory struct {
	Name  string             `json:"nombre"`
	Items []ShoppingListItem `json:"items"`
}

// ShoppingList is the consolidated, categorized list for a whole plan.
type ShoppingList struct {
	Categories []ShoppingListCategory `json:"categorias"`
}
