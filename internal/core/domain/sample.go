package domain

import "github.com/shopspring/decimal"

// SampleProducts returns the named demo catalog used by CATALOG_SEED=sample
// and by clients running in degraded mode.
func SampleProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Slug:        "pioneer-dj-ddj-400-controller",
			Name:        "Pioneer DJ DDJ-400 Controller",
			Brand:       "Pioneer DJ",
			Model:       "DDJ-400",
			Price:       decimal.RequireFromString("299.99"),
			Category:    "Controllers",
			Description: "Professional 2-channel DJ controller with Rekordbox integration",
			Image:       "https://images.unsplash.com/photo-1511379938547-c1f69419868d?w=400&h=300&fit=crop",
			Stock:       15,
		},
		{
			ID:          "2",
			Slug:        "technics-sl-1200mk7-turntable",
			Name:        "Technics SL-1200MK7 Turntable",
			Brand:       "Technics",
			Model:       "SL-1200MK7",
			Price:       decimal.RequireFromString("999.99"),
			Category:    "Turntables",
			Description: "Classic direct drive turntable with high-torque motor",
			Image:       "https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=400&h=300&fit=crop",
			Stock:       8,
		},
		{
			ID:          "3",
			Slug:        "shure-sm7b-microphone",
			Name:        "Shure SM7B Microphone",
			Brand:       "Shure",
			Model:       "SM7B",
			Price:       decimal.RequireFromString("399.99"),
			Category:    "Microphones",
			Description: "Dynamic microphone with excellent sound quality for vocals",
			Image:       "https://images.unsplash.com/photo-1589003077984-894e1322bea9?w=400&h=300&fit=crop",
			Stock:       12,
		},
	}
}
