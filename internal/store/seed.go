package store

import "medicart/internal/domain/catalog"

// seedCatalog fills an empty catalog with the default stock list.
func seedCatalog(snap *Snapshot) {
	seed := []catalog.Medicine{
		{Name: "Paracetamol", UnitPrice: 10, Stock: 150},
		{Name: "Ibuprofen", UnitPrice: 13, Stock: 100},
		{Name: "Antacid", UnitPrice: 15, Stock: 200},
		{Name: "Cough Syrup", UnitPrice: 11, Stock: 80},
		{Name: "Vitamin C", UnitPrice: 5, Stock: 180},
		{Name: "Allergy Relief", UnitPrice: 16, Stock: 60},
		{Name: "Metformin", UnitPrice: 23, Stock: 50},
		{Name: "Atorvastatin", UnitPrice: 27, Stock: 40},
		{Name: "Chemotherapy Drug", UnitPrice: 46, Stock: 20},
		{Name: "Insulin", UnitPrice: 36, Stock: 30},
		{Name: "Livogon", UnitPrice: 20, Stock: 25},
	}
	for _, m := range seed {
		clone := m
		snap.Catalog[m.Name] = &clone
	}
}
