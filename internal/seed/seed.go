// Package seed writes demo fixtures for local development: a handful of
// legacy vendor records and the traditions content. Collections that
// already hold data are left untouched.
package seed

import (
	"context"

	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/models"
)

// Run seeds the legacy vendors and traditions collections when empty.
func Run(ctx context.Context, store *docstore.Store) error {
	if err := seedLegacyVendors(ctx, store); err != nil {
		return err
	}
	return seedTraditions(ctx, store)
}

func seedLegacyVendors(ctx context.Context, store *docstore.Store) error {
	existing, err := docstore.LoadAll[models.LegacyVendor](ctx, store, docstore.CollLegacyVendors)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	vendors := []models.LegacyVendor{
		{
			ID:          "v-1001",
			Name:        "Salon Yasmine",
			Category:    "hairdresser",
			Region:      "Tunis",
			Price:       120,
			Description: "Bridal hair and makeup, at the salon or on location.",
			TimeSlots:   models.SlotList{"morning", "afternoon"},
		},
		{
			ID:          "v-1002",
			Name:        "Dar El Fouta",
			Category:    "traditional_clothes_women",
			Region:      "Sousse",
			Price:       350,
			Description: "Keswa and fouta w blouza rental with fittings included.",
			TimeSlots:   models.SlotList{"afternoon"},
		},
		{
			ID:          "v-1003",
			Name:        "Studio Lumière",
			Category:    "photographer",
			Region:      "Tunis",
			Price:       600,
			Description: "Full-day wedding coverage, album and digital gallery.",
			TimeSlots:   models.SlotList{"full_day"},
		},
		{
			ID:          "v-1004",
			Name:        "Dar Zarrouk",
			Category:    "wedding_venue",
			Region:      "Hammamet",
			Price:       2500,
			Description: "Seaside venue for up to 300 guests, catering optional.",
			TimeSlots:   models.SlotList{"evening"},
		},
		{
			ID:          "v-1005",
			Name:        "Firkat El Aaras",
			Category:    "band",
			Region:      "Sfax",
			Price:       800,
			Description: "Traditional mezoued and zokra band for the outia.",
			TimeSlots:   models.SlotList{"evening"},
		},
	}
	return docstore.SaveAll(ctx, store, docstore.CollLegacyVendors, vendors)
}

func seedTraditions(ctx context.Context, store *docstore.Store) error {
	existing, err := docstore.LoadAll[models.Tradition](ctx, store, docstore.CollTraditions)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	traditions := []models.Tradition{
		{
			ID:          1,
			Title:       "Outia",
			Region:      "Tunis",
			Description: "The opening night of the wedding week: family and neighbours gather at the bride's home with music and sweets to announce the celebrations.",
			Images:      []string{"/traditions/outia.jpg"},
		},
		{
			ID:          2,
			Title:       "Hammam Day",
			Region:      "Sousse",
			Description: "The bride and her close friends spend the day at the hammam, a ritual of purification accompanied by songs and candle processions.",
			Images:      []string{"/traditions/hammam.jpg"},
		},
		{
			ID:          3,
			Title:       "Henna Night",
			Region:      "Sfax",
			Description: "Henna is applied to the bride's hands and feet in intricate patterns while the women of both families sing traditional chants.",
			Images:      []string{"/traditions/henna.jpg"},
		},
		{
			ID:          4,
			Title:       "Jelwa",
			Region:      "Djerba",
			Description: "The bride is presented in several traditional outfits over the evening, each reveal greeted with youyous and gifts of gold.",
			Images:      []string{"/traditions/jelwa.jpg"},
		},
	}
	return docstore.SaveAll(ctx, store, docstore.CollTraditions, traditions)
}
