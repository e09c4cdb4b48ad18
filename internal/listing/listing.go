// Package listing resolves a public listing id to a unified view over the
// two vendor representations: flat legacy records and service/approved-
// profile pairs.
package listing

import (
	"context"
	"strings"

	"github.com/eersi/marketplace/internal/apperr"
	"github.com/eersi/marketplace/internal/category"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/models"
)

type Kind string

const (
	KindLegacy  Kind = "legacy"
	KindService Kind = "service"
)

// Listing is a publicly bookable item regardless of origin. OwnerID and
// VendorProfileID are empty for legacy records.
type Listing struct {
	ID              string   `json:"id"`
	Kind            Kind     `json:"listingType"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Region          string   `json:"region"`
	Price           float64  `json:"price"`
	Description     string   `json:"description"`
	TimeSlots       []string `json:"timeSlots"`
	OwnerID         string   `json:"ownerId,omitempty"`
	VendorProfileID string   `json:"vendorProfileId,omitempty"`
}

type Service struct {
	store    *docstore.Store
	registry *category.Registry
}

func NewService(store *docstore.Store, registry *category.Registry) *Service {
	return &Service{store: store, registry: registry}
}

// normalizeCategory maps a stored category through the registry, keeping the
// raw value when it no longer normalizes so old data stays displayable.
func (s *Service) normalizeCategory(raw string) string {
	if key := s.registry.Normalize(raw); key != "" {
		return key
	}
	return raw
}

func (s *Service) fromLegacy(v models.LegacyVendor) Listing {
	return Listing{
		ID:          v.ID,
		Kind:        KindLegacy,
		Name:        v.Name,
		Category:    s.normalizeCategory(v.Category),
		Region:      v.Region,
		Price:       v.Price,
		Description: v.Description,
		TimeSlots:   models.NormalizeSlots(v.TimeSlots),
	}
}

func (s *Service) fromService(svc models.Service, p models.VendorProfile) Listing {
	name := p.StoreName
	if title := strings.TrimSpace(svc.Title); title != "" {
		name = p.StoreName + " — " + title
	}
	cat := svc.Category
	if cat == "" {
		cat = p.Category
	}
	desc := svc.Description
	if desc == "" {
		desc = p.Description
	}
	return Listing{
		ID:              svc.ID,
		Kind:            KindService,
		Name:            name,
		Category:        s.normalizeCategory(cat),
		Region:          p.Region,
		Price:           svc.Price,
		Description:     desc,
		TimeSlots:       models.NormalizeSlots(svc.TimeSlots),
		OwnerID:         p.OwnerID,
		VendorProfileID: p.ID,
	}
}

// Resolve returns the unified listing for an id. Legacy records win unless
// already migrated; services require an approved owning profile, otherwise
// the listing is invisible even by direct id.
func (s *Service) Resolve(ctx context.Context, id string) (Listing, error) {
	legacy, err := docstore.LoadAll[models.LegacyVendor](ctx, s.store, docstore.CollLegacyVendors)
	if err != nil {
		return Listing{}, err
	}
	for _, v := range legacy {
		if v.ID == id && !v.Migrated {
			return s.fromLegacy(v), nil
		}
	}

	services, err := docstore.LoadAll[models.Service](ctx, s.store, docstore.CollServices)
	if err != nil {
		return Listing{}, err
	}
	var svc *models.Service
	for i := range services {
		if services[i].ID == id {
			svc = &services[i]
			break
		}
	}
	if svc == nil {
		return Listing{}, apperr.NotFound("Vendor/service not found")
	}

	profiles, err := docstore.LoadAll[models.VendorProfile](ctx, s.store, docstore.CollVendorProfiles)
	if err != nil {
		return Listing{}, err
	}
	for _, p := range profiles {
		if p.ID == svc.VendorProfileID && p.Status == models.ProfileApproved {
			return s.fromService(*svc, p), nil
		}
	}
	return Listing{}, apperr.NotFound("Vendor/service not found")
}

// Filter narrows a search. Category is normalized before comparison;
// MaxPrice keeps listings priced at or under the bound.
type Filter struct {
	Category string
	Region   string
	MaxPrice *float64
}

// Search merges non-migrated legacy vendors with services of approved
// profiles and applies the filter.
func (s *Service) Search(ctx context.Context, f Filter) ([]Listing, error) {
	legacy, err := docstore.LoadAll[models.LegacyVendor](ctx, s.store, docstore.CollLegacyVendors)
	if err != nil {
		return nil, err
	}
	profiles, err := docstore.LoadAll[models.VendorProfile](ctx, s.store, docstore.CollVendorProfiles)
	if err != nil {
		return nil, err
	}
	services, err := docstore.LoadAll[models.Service](ctx, s.store, docstore.CollServices)
	if err != nil {
		return nil, err
	}

	approved := make(map[string]models.VendorProfile)
	for _, p := range profiles {
		if p.Status == models.ProfileApproved {
			approved[p.ID] = p
		}
	}

	all := []Listing{}
	for _, v := range legacy {
		if !v.Migrated {
			all = append(all, s.fromLegacy(v))
		}
	}
	for _, svc := range services {
		if p, ok := approved[svc.VendorProfileID]; ok {
			all = append(all, s.fromService(svc, p))
		}
	}

	wantCategory := ""
	if f.Category != "" {
		wantCategory = s.normalizeCategory(f.Category)
	}

	out := []Listing{}
	for _, l := range all {
		if wantCategory != "" && l.Category != wantCategory {
			continue
		}
		if f.Region != "" && l.Region != f.Region {
			continue
		}
		if f.MaxPrice != nil && l.Price > *f.MaxPrice {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// CategoriesInUse returns the registry view of every category present in
// legacy data or approved-profile services, in first-seen order.
func (s *Service) CategoriesInUse(ctx context.Context) ([]category.Category, error) {
	listings, err := s.Search(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := []category.Category{}
	for _, l := range listings {
		if l.Category == "" || seen[l.Category] {
			continue
		}
		seen[l.Category] = true
		out = append(out, s.registry.Describe(l.Category))
	}
	return out, nil
}
