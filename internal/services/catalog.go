package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"storefront-catalog-api/internal/engine"
	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/sources"
	"storefront-catalog-api/pkg/cache"
	"storefront-catalog-api/pkg/metrics"
)

// ProductSource supplies the raw product payload. Abstracted so tests can
// inject fixture batches instead of a live backend.
type ProductSource interface {
	FetchProducts() ([]models.RawRecord, error)
}

type CatalogService struct {
	source  ProductSource
	cache   *cache.RedisCache
	metrics *metrics.Registry
}

func NewCatalogService(reg *metrics.Registry) *CatalogService {
	return &CatalogService{
		source:  sources.NewBackendClient(),
		cache:   cache.NewRedisCache(),
		metrics: reg,
	}
}

// NewCatalogServiceWith is for tests to inject a fake source and skip Redis.
func NewCatalogServiceWith(source ProductSource, c *cache.RedisCache, reg *metrics.Registry) *CatalogService {
	return &CatalogService{source: source, cache: c, metrics: reg}
}

func (s *CatalogService) Cache() *cache.RedisCache {
	return s.cache
}

// BuildCatalog runs the grouping engine over a caller-supplied raw batch.
// This is the pure library boundary: no backend call, no caching.
func (s *CatalogService) BuildCatalog(records []models.RawRecord) engine.GroupResult {
	start := time.Now()
	result := engine.Group(records)
	s.observeGroup(result, time.Since(start))
	return result
}

// ListCatalog fetches the raw payload, groups it, applies the visibility
// filter and paginates. Responses are cached in Redis keyed by params.
func (s *CatalogService) ListCatalog(params models.ListParams) (*models.CatalogResponse, error) {
	startTime := time.Now()

	if err := s.validateListParams(&params); err != nil {
		return nil, err
	}

	cacheKey := ""
	if s.cache.IsAvailable() {
		cacheKey = s.cache.GenerateCatalogKey(params)
		if cached, err := s.cache.GetCatalog(cacheKey); err == nil && cached != nil {
			cached.Duration = fmt.Sprintf("%s (cached)", time.Since(startTime).String())
			log.Printf("Cache HIT for key: %s", cacheKey)
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return cached, nil
		}
		log.Printf("Cache MISS for key: %s", cacheKey)
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
	}

	records, err := s.source.FetchProducts()
	if err != nil {
		return nil, fmt.Errorf("fetch products: %v", err)
	}

	result := s.BuildCatalog(records)

	listable := make([]models.CatalogEntry, 0, len(result.Entries))
	opts := engine.ListOptions{CollectionSlug: params.Collection}
	for _, entry := range result.Entries {
		if engine.IsListable(entry, opts) {
			listable = append(listable, entry)
		}
	}

	paginated, totalPages := s.applyPagination(listable, params.Page, params.Limit)

	response := &models.CatalogResponse{
		Entries:    paginated,
		Total:      len(listable),
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		Skipped:    result.Skipped,
		Collection: params.Collection,
		Duration:   time.Since(startTime).String(),
	}

	if s.cache.IsAvailable() && cacheKey != "" {
		if err := s.cache.SetCatalog(cacheKey, response); err != nil {
			log.Printf("Failed to cache catalog: %v", err)
		} else {
			log.Printf("Cached catalog for key: %s", cacheKey)
		}
	}

	return response, nil
}

// GetEntry resolves one canonical entry by base id: the ingest-primed
// entry cache first, then a fresh fetch-and-group pass.
func (s *CatalogService) GetEntry(baseID string) (*models.CatalogEntry, error) {
	if baseID == "" {
		return nil, fmt.Errorf("base id cannot be empty")
	}

	if s.cache.IsAvailable() {
		if entry, err := s.cache.GetEntry(baseID); err == nil && entry != nil {
			return entry, nil
		}
	}

	records, err := s.source.FetchProducts()
	if err != nil {
		return nil, fmt.Errorf("fetch products: %v", err)
	}

	result := s.BuildCatalog(records)
	for i := range result.Entries {
		if result.Entries[i].BaseID == baseID {
			return &result.Entries[i], nil
		}
	}
	return nil, nil
}

// SelectVariant resolves a (color, size) selection against an entry. A nil
// variant with a nil error means the hints match nothing purchasable.
func (s *CatalogService) SelectVariant(baseID, colorHint, sizeHint string) (*models.CatalogEntry, *models.Variant, error) {
	entry, err := s.GetEntry(baseID)
	if err != nil {
		return nil, nil, err
	}
	if entry == nil {
		return nil, nil, nil
	}
	return entry, engine.SelectVariant(*entry, colorHint, sizeHint), nil
}

// VariantOptions lists the selectable colors and sizes of an entry, sizes
// optionally narrowed by color.
func (s *CatalogService) VariantOptions(baseID, colorFilter string) (*models.VariantOptions, error) {
	entry, err := s.GetEntry(baseID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return &models.VariantOptions{
		BaseID: entry.BaseID,
		Colors: engine.AvailableColors(*entry),
		Sizes:  engine.AvailableSizes(*entry, colorFilter),
	}, nil
}

func (s *CatalogService) validateListParams(params *models.ListParams) error {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = 10
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	return nil
}

func (s *CatalogService) applyPagination(entries []models.CatalogEntry, page, limit int) ([]models.CatalogEntry, int) {
	total := len(entries)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	start := (page - 1) * limit
	if start >= total {
		return []models.CatalogEntry{}, totalPages
	}

	end := start + limit
	if end > total {
		end = total
	}
	return entries[start:end], totalPages
}

func (s *CatalogService) observeGroup(result engine.GroupResult, elapsed time.Duration) {
	if result.Skipped > 0 {
		log.Printf("Grouping skipped %d records with no base id", result.Skipped)
	}
	if result.BadAttributes > 0 {
		log.Printf("Grouping saw %d undecodable attribute blobs", result.BadAttributes)
	}
	if s.metrics == nil {
		return
	}
	s.metrics.RecordsSkipped.Add(float64(result.Skipped))
	s.metrics.BadAttributes.Add(float64(result.BadAttributes))
	s.metrics.EntriesGrouped.Add(float64(len(result.Entries)))
	s.metrics.GroupSeconds.Observe(elapsed.Seconds())
}
