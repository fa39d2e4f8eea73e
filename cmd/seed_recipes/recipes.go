package main

import "github.com/culinario/backend/internal/model"

func ing(name string, amount float64, unit string) model.Ingredient {
	return model.Ingredient{Name: name, Amount: amount, Unit: unit}
}

var demoRecipes = []model.Recipe{
	{
		Name:         "Marry Me Gnocchi",
		Category:     "Hauptgericht",
		OvenSettings: "180°C Umluft",
		Source:       "Eigenes Rezept",
		Servings:     2,
		Ingredients: model.IngredientList{
			ing("Gnocchi", 500, "g"),
			ing("Tofu", 1, "Packung"),
			ing("Getrocknete Tomaten", 130, "g"),
			ing("Spinat", 2, "Handvoll"),
			ing("Parmesan", 40, "g"),
			ing("Sahne", 120, "ml"),
			ing("Butter", 28, "g"),
			ing("Knoblauchzehen", 4, "Stück"),
			ing("Salz", 0.25, "TL"),
			ing("Pfeffer", 0.25, "TL"),
			ing("Gemüsebrühe", 473, "ml"),
		},
		PreparationSteps: model.StepList{
			{
				StepNumber: 1,
				Description: "In einer großen Pfanne die Butter bei mittlerer Hitze schmelzen. Knoblauch, Salz und Pfeffer dazugeben " +
					"und etwa 2 Minuten anbraten. Den Tofu hineinbröseln und 5 bis 10 Minuten anbraten, bis er gebräunt ist.",
				Ingredients: []model.Ingredient{
					ing("Tofu", 1, "Packung"),
					ing("Butter", 28, "g"),
					ing("Knoblauchzehen", 4, "Stück"),
					ing("Salz", 0.25, "TL"),
					ing("Pfeffer", 0.25, "TL"),
				},
			},
			{
				StepNumber: 2,
				Description: "Die getrockneten Tomaten und die Gemüsebrühe einrühren und köcheln lassen. " +
					"Die Gnocchi hinzufügen, abdecken und 2 bis 4 Minuten garen.",
				Ingredients: []model.Ingredient{
					ing("Getrocknete Tomaten", 130, "g"),
					ing("Gemüsebrühe", 473, "ml"),
					ing("Gnocchi", 500, "g"),
				},
			},
			{
				StepNumber:  3,
				Description: "Vom Herd nehmen. Spinat unterrühren, bis er zusammenfällt. Danach Sahne und Parmesan unterrühren.",
				Ingredients: []model.Ingredient{
					ing("Spinat", 2, "Handvoll"),
					ing("Parmesan", 40, "g"),
					ing("Sahne", 120, "ml"),
				},
			},
		},
	},
	{
		Name:     "Pfannkuchen",
		Category: "Dessert",
		Servings: 4,
		Ingredients: model.IngredientList{
			ing("Mehl", 250, "g"),
			ing("Milch", 500, "ml"),
			ing("Eier", 3, ""),
			ing("Zucker", 1, "EL"),
			ing("Salz", 1, "Prise"),
			ing("Butter", 20, "g"),
		},
		PreparationSteps: model.StepList{
			{
				StepNumber:  1,
				Description: "Mehl, Milch, Eier, Zucker und Salz glatt rühren und 10 Minuten quellen lassen.",
				Ingredients: []model.Ingredient{
					ing("Mehl", 250, "g"),
					ing("Milch", 500, "ml"),
					ing("Eier", 3, ""),
					ing("Zucker", 1, "EL"),
					ing("Salz", 1, "Prise"),
				},
			},
			{
				StepNumber:  2,
				Description: "Etwas Butter in der Pfanne erhitzen und den Teig portionsweise goldbraun ausbacken.",
				Ingredients: []model.Ingredient{
					ing("Butter", 20, "g"),
				},
			},
		},
	},
}
