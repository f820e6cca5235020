package automation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/equipment"
	"github.com/careops/careops/internal/domain/provider"
	"github.com/careops/careops/internal/domain/servicerequest"
	"github.com/careops/careops/internal/platform/lifecycle"
)

// Scan windows.
const (
	StaleAfter       = 7 * 24 * time.Hour
	MaintenanceAhead = 7 * 24 * time.Hour
	ExpiryAhead      = 30 * 24 * time.Hour
)

// StaleRequestRule flags service requests that sit in a non-terminal status
// without any update for StaleAfter. Terminal statuses are filtered here
// because the repository scan is by timestamp only.
type StaleRequestRule struct {
	Requests servicerequest.Repository
	Now      func() time.Time
}

func (r *StaleRequestRule) Name() string { return "stale-request" }
func (r *StaleRequestRule) Cadence() time.Duration { return time.Hour }

func (r *StaleRequestRule) Run(ctx context.Context) (Result, error) {
	cutoff := r.now().Add(-StaleAfter)
	items, err := r.Requests.ListUpdatedBefore(ctx, cutoff)
	if err != nil {
		return Result{}, err
	}
	var res Result
	for _, sr := range items {
		if lifecycle.IsTerminal(lifecycle.KindServiceRequest, sr.Status) {
			continue
		}
		res.AffectedCount++
		res.SampleIDs = append(res.SampleIDs, sr.ID)
	}
	return res, nil
}

func (r *StaleRequestRule) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// MaintenanceReminderRule flags maintenance records scheduled within the next
// MaintenanceAhead window. Completed records never come back from the scan.
type MaintenanceReminderRule struct {
	Maintenance equipment.MaintenanceRepository
	Now         func() time.Time
}

func (r *MaintenanceReminderRule) Name() string { return "maintenance-reminder" }
func (r *MaintenanceReminderRule) Cadence() time.Duration { return 24 * time.Hour }

func (r *MaintenanceReminderRule) Run(ctx context.Context) (Result, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	items, err := r.Maintenance.ListScheduledBetween(ctx, now, now.Add(MaintenanceAhead))
	if err != nil {
		return Result{}, err
	}
	res := Result{AffectedCount: len(items)}
	for _, m := range items {
		res.SampleIDs = append(res.SampleIDs, m.ID)
	}
	return res, nil
}

// LowStockRule flags supply items whose current stock fell below the reorder
// point, grouped per organization so the record shows how many tenants are
// affected.
type LowStockRule struct {
	Supplies equipment.SupplyRepository
}

func (r *LowStockRule) Name() string { return "low-stock" }
func (r *LowStockRule) Cadence() time.Duration { return 24 * time.Hour }

func (r *LowStockRule) Run(ctx context.Context) (Result, error) {
	items, err := r.Supplies.ListBelowReorder(ctx)
	if err != nil {
		return Result{}, err
	}
	orgs := make(map[uuid.UUID]int)
	res := Result{AffectedCount: len(items)}
	for _, s := range items {
		orgs[s.OrganizationID]++
		res.SampleIDs = append(res.SampleIDs, s.ID)
	}
	res.Extra = map[string]interface{}{"organizations": len(orgs)}
	return res, nil
}

// CertificationExpiryRule flags provider certifications expiring within the
// next ExpiryAhead window. Certifications without an expiry date are ignored.
type CertificationExpiryRule struct {
	Certifications provider.CertificationRepository
	Now            func() time.Time
}

func (r *CertificationExpiryRule) Name() string { return "certification-expiry" }
func (r *CertificationExpiryRule) Cadence() time.Duration { return 7 * 24 * time.Hour }

func (r *CertificationExpiryRule) Run(ctx context.Context) (Result, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	items, err := r.Certifications.ListExpiringBefore(ctx, now.Add(ExpiryAhead))
	if err != nil {
		return Result{}, err
	}
	res := Result{AffectedCount: len(items)}
	for _, c := range items {
		res.SampleIDs = append(res.SampleIDs, c.ID)
	}
	return res, nil
}
