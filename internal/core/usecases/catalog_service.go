package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/metropass/internal/core/domain"
	"github.com/samirrijal/metropass/internal/core/ports"
	"github.com/samirrijal/metropass/internal/pkg/metrics"
)

// catalogTTL is long: the tables only change with a deploy.
const catalogTTL = 3600

// TicketTypeView is a ticket type rendered for one locale.
type TicketTypeView struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Price            int64  `json:"price"`
	PriceText        string `json:"price_text"`
	RequiresStations bool   `json:"requires_stations"`
}

// StationView is a station rendered for one locale.
type StationView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogService serves the localised reference tables.
type CatalogService struct {
	cache ports.CacheService
}

// NewCatalogService creates a CatalogService. cache may be nil.
func NewCatalogService(cache ports.CacheService) *CatalogService {
	return &CatalogService{cache: cache}
}

// TicketTypes lists every ticket type.
func (s *CatalogService) TicketTypes(ctx context.Context, locale domain.Locale) ([]TicketTypeView, error) {
	cacheKey := "catalog:ticket-types:" + locale.String()
	var views []TicketTypeView
	if s.fromCache(ctx, cacheKey, "ticket_types", &views) {
		return views, nil
	}

	for _, t := range domain.TicketTypes() {
		views = append(views, NewTicketTypeView(t, locale))
	}
	s.toCache(ctx, cacheKey, views)
	return views, nil
}

// Fare quotes a single ticket type.
func (s *CatalogService) Fare(ctx context.Context, ticketTypeID string, locale domain.Locale) (*TicketTypeView, error) {
	t, ok := domain.LookupTicketType(ticketTypeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTicketType, ticketTypeID)
	}
	v := NewTicketTypeView(t, locale)
	return &v, nil
}

// Stations lists every station in line order.
func (s *CatalogService) Stations(ctx context.Context, locale domain.Locale) ([]StationView, error) {
	cacheKey := "catalog:stations:" + locale.String()
	var views []StationView
	if s.fromCache(ctx, cacheKey, "stations", &views) {
		return views, nil
	}

	for _, st := range domain.Stations() {
		views = append(views, StationView{ID: st.ID, Name: st.Name.In(locale)})
	}
	s.toCache(ctx, cacheKey, views)
	return views, nil
}

// Destinations lists the stations a trip from origin can end at.
func (s *CatalogService) Destinations(ctx context.Context, originID string, locale domain.Locale) ([]StationView, error) {
	if _, ok := domain.LookupStation(originID); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStation, originID)
	}
	all, err := s.Stations(ctx, locale)
	if err != nil {
		return nil, err
	}
	out := make([]StationView, 0, len(all))
	for _, st := range all {
		if st.ID != originID {
			out = append(out, st)
		}
	}
	return out, nil
}

// PaymentMethods lists the payment methods.
func (s *CatalogService) PaymentMethods(ctx context.Context) []domain.PaymentMethod {
	return domain.PaymentMethods()
}

// NewTicketTypeView renders a ticket type for a locale.
func NewTicketTypeView(t domain.TicketType, locale domain.Locale) TicketTypeView {
	return TicketTypeView{
		ID:               t.ID,
		Name:             t.Name.In(locale),
		Description:      t.Description.In(locale),
		Price:            t.Price,
		PriceText:        domain.FormatVND(t.Price),
		RequiresStations: domain.RequiresStations(t.ID),
	}
}

func (s *CatalogService) fromCache(ctx context.Context, key, op string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return true
}

func (s *CatalogService) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, catalogTTL)
	}
}
