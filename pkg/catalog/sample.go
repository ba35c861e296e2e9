package catalog

import (
	"github.com/pluqqy/proposal-cli/pkg/models"
)

// Sample returns the starter catalog written by `proposal init`
func Sample() models.Catalog {
	return models.Catalog{
		Modules: []models.Module{
			{ID: 1, Name: "Kitchen"},
			{ID: 2, Name: "Bathroom"},
			{ID: 3, Name: "Exterior"},
		},
		Elements: []models.Element{
			{ID: 1, Name: "Base cabinets", Unit: "lf", MaterialCost: 320, LaborCost: 95, DefaultMarkup: 18},
			{ID: 2, Name: "Countertop", Unit: "sqft", MaterialCost: 65, LaborCost: 22, DefaultMarkup: 20},
			{ID: 3, Name: "Tile flooring", Unit: "sqft", MaterialCost: 7.5, LaborCost: 6, DefaultMarkup: 15},
			{ID: 4, Name: "Vanity", Unit: "ea", MaterialCost: 850, LaborCost: 240, DefaultMarkup: 18},
			{ID: 5, Name: "Siding", Unit: "sqft", MaterialCost: 4.25, LaborCost: 3.1, DefaultMarkup: 12},
		},
		Parameters: []models.Parameter{
			{ID: 1, Name: "area", Kind: models.ParameterKindNumber, Number: 120},
			{ID: 2, Name: "wallArea", Kind: models.ParameterKindNumber, Number: 340},
			{ID: 3, Name: "laborRate", Kind: models.ParameterKindNumber, Number: 65},
			{ID: 4, Name: "linearFeet", Kind: models.ParameterKindNumber, Number: 24},
			{ID: 5, Name: "wasteFactor", Kind: models.ParameterKindNumber, Number: 1.1},
			{ID: 6, Name: "finish", Kind: models.ParameterKindText, Text: "satin"},
		},
	}
}
