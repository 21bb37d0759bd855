package api

import (
	"context"
	"net/url"
	"time"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

const reportDateLayout = "2006-01-02"

// Reports covers the /reports endpoints.
type Reports struct {
	client *Client
}

// Get fetches the named report (for example "revenue" or "topups") for the
// inclusive date range [from, to]. Zero times are omitted from the query.
func (r *Reports) Get(ctx context.Context, name string, from, to time.Time) (model.Report, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.Format(reportDateLayout))
	}
	if !to.IsZero() {
		query.Set("to", to.Format(reportDateLayout))
	}

	var env dataEnvelope[model.Report]
	if err := r.client.Get(ctx, "/reports/"+url.PathEscape(name), query, &env); err != nil {
		return model.Report{}, err
	}
	if env.Data.Name == "" {
		env.Data.Name = name
	}
	return env.Data, nil
}
