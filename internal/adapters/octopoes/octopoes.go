// Package octopoes implements the inventory connector: the asset inventory
// holding objects of interest and the scan profiles operators granted them.
package octopoes

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/strixlab/patrol/internal/adapters/upstream"
	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

var _ core.InventoryService = (*Service)(nil)

// listPageSize bounds one page of the objects listing. The inventory caps
// page sizes server-side, so larger values only waste a round trip.
const listPageSize = 100

// ServiceOptions groups dependencies for the octopoes Service.
type ServiceOptions struct {
	Client *upstream.Client
	Logger *slog.Logger
}

// Service talks to the octopoes REST API. Every endpoint is scoped to one
// organisation; the organisation ID is the first path segment.
type Service struct {
	client *upstream.Client
	logger *slog.Logger
}

// NewService constructs an octopoes Service.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: opts.Client,
		logger: logger.With("adapter", "octopoes"),
	}
}

// paginated is the inventory's list envelope.
type paginated struct {
	Count int         `json:"count"`
	Items []model.OOI `json:"items"`
}

// GetObject returns the object with the given primary key, or a NotFound
// error when the inventory no longer knows it.
func (s *Service) GetObject(ctx context.Context, orgID, primaryKey string) (*model.OOI, error) {
	if primaryKey == "" {
		return nil, apperrors.ValidationField("reference", "object reference is required")
	}

	query := url.Values{}
	query.Set("reference", primaryKey)

	var ooi model.OOI
	path := fmt.Sprintf("/%s/object", orgPathSegment(orgID))
	if err := s.client.GetJSON(ctx, path, query, &ooi); err != nil {
		return nil, err
	}
	return &ooi, nil
}

// GetObjectsByTypes returns the organisation's objects whose type is in
// types. An empty types slice matches nothing. Pages through the listing
// until the reported count is reached.
func (s *Service) GetObjectsByTypes(ctx context.Context, orgID string, types []string) ([]model.OOI, error) {
	if len(types) == 0 {
		return nil, nil
	}

	path := fmt.Sprintf("/%s/objects", orgPathSegment(orgID))
	var objects []model.OOI

	for offset := 0; ; offset += listPageSize {
		query := url.Values{}
		for _, t := range types {
			query.Add("types", t)
		}
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(listPageSize))

		var page paginated
		if err := s.client.GetJSON(ctx, path, query, &page); err != nil {
			return nil, err
		}

		objects = append(objects, page.Items...)
		if len(page.Items) == 0 || len(objects) >= page.Count {
			break
		}
	}

	return objects, nil
}

// GetRandomObjects returns up to params.Amount random objects whose last
// check is older than params.MaxCheckedAt. The inventory does the sampling;
// callers get at most one queue-fill's worth of rescheduling work.
func (s *Service) GetRandomObjects(ctx context.Context, params core.RandomObjectsParams) ([]model.OOI, error) {
	if params.Amount <= 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("amount", strconv.Itoa(params.Amount))
	if !params.MaxCheckedAt.IsZero() {
		query.Set("max_checked_at", params.MaxCheckedAt.UTC().Format(time.RFC3339))
	}

	var objects []model.OOI
	path := fmt.Sprintf("/%s/objects/random", orgPathSegment(params.OrganisationID))
	if err := s.client.GetJSON(ctx, path, query, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// Health probes the octopoes health endpoint.
func (s *Service) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// WaitReady polls octopoes until it is healthy.
func (s *Service) WaitReady(ctx context.Context, attempts int, interval time.Duration) error {
	return s.client.WaitReady(ctx, attempts, interval)
}

// orgPathSegment escapes an organisation ID for use as a path segment.
// Organisation IDs are operator-provided and occasionally contain characters
// that would otherwise split the path.
func orgPathSegment(orgID string) string {
	return url.PathEscape(orgID)
}
