package prompt

import "github.com/google/generative-ai-go/genai"

// planSchema constrains the initial plan to day label, date and meal names
// only, keeping the first round-trip small.
func planSchema() *genai.Schema {
	mealName := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"nombre": {Type: genai.TypeString},
		},
		Required: []string{"nombre"},
	}

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"dia":    {Type: genai.TypeString},
				"fecha":  {Type: genai.TypeString},
				"comida": mealName,
				"cena":   mealName,
			},
			Required: []string{"dia", "fecha", "comida", "cena"},
		},
	}
}

// detailsSchema requires all five detail fields; partial detail objects are
// rejected upstream rather than leaking nulls into the caller.
func detailsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"nombre": {Type: genai.TypeString},
			"ingredientes": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"preparacion": {
				Type:        genai.TypeString,
				Description: "Instrucciones de cocinado paso a paso. Cada paso numerado debe estar separado del siguiente por un carácter de nueva línea ('\\n').",
			},
			"infoNutricional": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"calorias":      {Type: genai.TypeNumber},
					"proteinas":     {Type: genai.TypeNumber},
					"carbohidratos": {Type: genai.TypeNumber},
					"grasas":        {Type: genai.TypeNumber},
				},
				Required: []string{"calorias", "proteinas", "carbohidratos", "grasas"},
			},
			"comentarioMotivador": {
				Type:        genai.TypeString,
				Description: "Un consejo breve y motivador desde la perspectiva de un nutricionista sobre este plato específico.",
			},
		},
		Required: []string{"nombre", "ingredientes", "preparacion", "infoNutricional", "comentarioMotivador"},
	}
}

func shoppingSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"categorias": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"nombre": {Type: genai.TypeString},
						"items": {
							Type: genai.TypeArray,
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"id":       {Type: genai.TypeString, Description: "Un ID único para el item, por ejemplo un UUID."},
									"nombre":   {Type: genai.TypeString},
									"cantidad": {Type: genai.TypeString},
								},
								Required: []string{"id", "nombre", "cantidad"},
							},
						},
					},
					Required: []string{"nombre", "items"},
				},
			},
		},
		Required: []string{"categorias"},
	}
}
