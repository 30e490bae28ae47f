package analysis

import "flipfinder/internal/models"

func testProperty() *models.Property {
	return &models.Property{
		MLSID: "MLS123",
		Address: models.Address{
			Street:  "123 Main St",
			City:    "Washington",
			State:   "DC",
			ZipCode: "20001",
		},
		ListPrice:    200000,
		Bedrooms:     3,
		Bathrooms:    2,
		SquareFeet:   1000,
		YearBuilt:    1980,
		DaysOnMarket: 30,
	}
}
