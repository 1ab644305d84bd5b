// Package katalogus implements the catalogue connector: the source of truth
// for organisations and their plugins. Plugin lists are cached per
// organisation with a short TTL; the enabled-boefje snapshot used for
// new-boefje detection never expires and is only replaced on read.
package katalogus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/strixlab/patrol/internal/adapters/upstream"
	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

var _ core.CatalogueService = (*Service)(nil)

const defaultPluginTTL = 30 * time.Second

// ServiceOptions groups dependencies for the katalogus Service.
type ServiceOptions struct {
	Client *upstream.Client
	Cache  core.CacheRepository

	// PluginTTL bounds how long a cached plugin list is served before the
	// katalogus is asked again.
	PluginTTL time.Duration

	Logger *slog.Logger
}

// Service talks to the katalogus REST API.
type Service struct {
	client    *upstream.Client
	cache     core.CacheRepository
	pluginTTL time.Duration
	logger    *slog.Logger
}

// NewService constructs a katalogus Service.
func NewService(opts ServiceOptions) *Service {
	ttl := opts.PluginTTL
	if ttl <= 0 {
		ttl = defaultPluginTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:    opts.Client,
		cache:     opts.Cache,
		pluginTTL: ttl,
		logger:    logger.With("adapter", "katalogus"),
	}
}

func pluginCacheKey(orgID string) string {
	return fmt.Sprintf("katalogus:%s:plugins", orgID)
}

func enabledSnapshotKey(orgID string) string {
	return fmt.Sprintf("katalogus:%s:boefjes:enabled", orgID)
}

func orgCachePrefix(orgID string) string {
	return fmt.Sprintf("katalogus:%s:", orgID)
}

// ListOrganisations returns every organisation known to the katalogus.
func (s *Service) ListOrganisations(ctx context.Context) ([]model.Organisation, error) {
	var orgs []model.Organisation
	if err := s.client.GetJSON(ctx, "/organisations", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetBoefjesByOOIType returns the organisation's boefjes consuming the given
// OOI type, enabled or not. Served from the plugin cache when fresh.
func (s *Service) GetBoefjesByOOIType(ctx context.Context, orgID, ooiType string) ([]model.Plugin, error) {
	plugins, err := s.getPlugins(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var matched []model.Plugin
	for _, p := range plugins {
		if p.Type == model.PluginTypeBoefje && p.ConsumesType(ooiType) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// GetNormalizersByMimeType returns the organisation's normalizers consuming
// the given mime type, enabled or not.
func (s *Service) GetNormalizersByMimeType(ctx context.Context, orgID, mimeType string) ([]model.Plugin, error) {
	plugins, err := s.getPlugins(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var matched []model.Plugin
	for _, p := range plugins {
		if p.Type == model.PluginTypeNormalizer && p.ConsumesType(mimeType) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// GetNewBoefjesByOrg returns boefjes enabled since the previous call for the
// organisation. The current enabled set is always fetched fresh, diffed
// against the stored snapshot, and the snapshot replaced. A missing snapshot
// is primed without reporting anything new, so a cold cache never floods the
// queue with fan-out work.
func (s *Service) GetNewBoefjesByOrg(ctx context.Context, orgID string) ([]model.Plugin, error) {
	plugins, err := s.fetchPlugins(ctx, orgID)
	if err != nil {
		return nil, err
	}

	enabled := make(map[string]model.Plugin)
	for _, p := range plugins {
		if p.Type == model.PluginTypeBoefje && p.Enabled {
			enabled[p.ID] = p
		}
	}

	previous, hadSnapshot := s.loadSnapshot(ctx, orgID)

	var news []model.Plugin
	if hadSnapshot {
		for id, p := range enabled {
			if _, ok := previous[id]; !ok {
				news = append(news, p)
			}
		}
		sort.Slice(news, func(i, j int) bool { return news[i].ID < news[j].ID })
	}

	s.storeSnapshot(ctx, orgID, enabled)
	return news, nil
}

// FlushCaches drops the organisation's cached plugin data and primes it
// again, so new-boefje detection starts from the current enabled set.
func (s *Service) FlushCaches(ctx context.Context, orgID string) error {
	if _, err := s.cache.DeleteByPrefix(ctx, orgCachePrefix(orgID)); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "flush katalogus caches for %s", orgID)
	}

	plugins, err := s.fetchPlugins(ctx, orgID)
	if err != nil {
		return err
	}
	s.cachePlugins(ctx, orgID, plugins)

	enabled := make(map[string]model.Plugin)
	for _, p := range plugins {
		if p.Type == model.PluginTypeBoefje && p.Enabled {
			enabled[p.ID] = p
		}
	}
	s.storeSnapshot(ctx, orgID, enabled)
	return nil
}

// Health probes the katalogus health endpoint.
func (s *Service) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// WaitReady polls the katalogus until it is healthy.
func (s *Service) WaitReady(ctx context.Context, attempts int, interval time.Duration) error {
	return s.client.WaitReady(ctx, attempts, interval)
}

// getPlugins serves the organisation's plugin list from cache, falling back
// to the API. Cache failures degrade to a fetch, never to an error.
func (s *Service) getPlugins(ctx context.Context, orgID string) ([]model.Plugin, error) {
	key := pluginCacheKey(orgID)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("plugin cache read failed", "org_id", orgID, "error", err)
	}
	if cached != nil {
		var plugins []model.Plugin
		if err := json.Unmarshal(cached, &plugins); err == nil {
			return plugins, nil
		}
		s.logger.Warn("dropping undecodable plugin cache entry", "org_id", orgID)
	}

	plugins, err := s.fetchPlugins(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.cachePlugins(ctx, orgID, plugins)
	return plugins, nil
}

func (s *Service) fetchPlugins(ctx context.Context, orgID string) ([]model.Plugin, error) {
	var plugins []model.Plugin
	path := fmt.Sprintf("/organisations/%s/plugins", orgID)
	if err := s.client.GetJSON(ctx, path, nil, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

func (s *Service) cachePlugins(ctx context.Context, orgID string, plugins []model.Plugin) {
	payload, err := json.Marshal(plugins)
	if err != nil {
		s.logger.Warn("encode plugin cache entry failed", "org_id", orgID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, pluginCacheKey(orgID), payload, s.pluginTTL); err != nil {
		s.logger.Warn("plugin cache write failed", "org_id", orgID, "error", err)
	}
}

// loadSnapshot returns the stored enabled-boefje ID set and whether a
// snapshot existed at all.
func (s *Service) loadSnapshot(ctx context.Context, orgID string) (map[string]struct{}, bool) {
	raw, err := s.cache.Get(ctx, enabledSnapshotKey(orgID))
	if err != nil {
		s.logger.Warn("boefje snapshot read failed", "org_id", orgID, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.logger.Warn("dropping undecodable boefje snapshot", "org_id", orgID)
		return nil, false
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, true
}

func (s *Service) storeSnapshot(ctx context.Context, orgID string, enabled map[string]model.Plugin) {
	ids := make([]string, 0, len(enabled))
	for id := range enabled {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	payload, err := json.Marshal(ids)
	if err != nil {
		s.logger.Warn("encode boefje snapshot failed", "org_id", orgID, "error", err)
		return
	}
	// No TTL: an expiring snapshot would make every enabled boefje look new
	// again.
	if err := s.cache.Set(ctx, enabledSnapshotKey(orgID), payload, 0); err != nil {
		s.logger.Warn("boefje snapshot write failed", "org_id", orgID, "error", err)
	}
}
