package equipment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
	"github.com/careops/careops/internal/platform/lifecycle"
)

type Service struct {
	equipment   Repository
	failures    FailureReportRepository
	maintenance MaintenanceRepository
	supplies    SupplyRepository
	recorder    audit.Recorder
	runner      db.Runner
}

func NewService(equipment Repository, failures FailureReportRepository, maintenance MaintenanceRepository, supplies SupplyRepository, recorder audit.Recorder, runner db.Runner) *Service {
	return &Service{
		equipment:   equipment,
		failures:    failures,
		maintenance: maintenance,
		supplies:    supplies,
		recorder:    recorder,
		runner:      runner,
	}
}

func (s *Service) Create(ctx context.Context, ident *auth.Identity, e *Equipment) error {
	if e.Name == "" {
		return apperr.Validation("equipment name is required", "उपकरण का नाम आवश्यक है")
	}
	if e.SerialNumber == "" {
		return apperr.Validation("serial number is required", "क्रम संख्या आवश्यक है")
	}
	if e.Criticality == "" {
		e.Criticality = CriticalityMedium
	}
	if !validCriticality(e.Criticality) {
		return apperr.Validation("criticality must be low, medium, high or critical", "गंभीरता low, medium, high या critical होनी चाहिए")
	}

	e.OrganizationID = ident.OrganizationID
	e.CreatedBy = ident.UserID
	e.Status = lifecycle.EquipmentAvailable

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.equipment.Create(ctx, e); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: e.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "equipment.created",
			ResourceType:   "equipment",
			ResourceID:     e.ID,
			NewValues:      map[string]interface{}{"name": e.Name, "serial_number": e.SerialNumber, "status": e.Status},
		})
		return err
	})
}

func (s *Service) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Equipment, error) {
	e, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckRead(e.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, ident *auth.Identity, status string, limit, offset int) ([]*Equipment, int, error) {
	return s.equipment.ListByOrganization(ctx, ident.OrganizationID, status, limit, offset)
}

// Transition moves equipment to target through the lifecycle table. The
// UPDATE is guarded on the current status, so a concurrent transition loses
// cleanly as INVALID_TRANSITION rather than silently double-applying.
func (s *Service) Transition(ctx context.Context, ident *auth.Identity, id uuid.UUID, target string) (*Equipment, error) {
	e, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(e.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	if err := lifecycle.Validate(lifecycle.KindEquipment, e.Status, target); err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		moved, err := s.equipment.UpdateStatus(ctx, id, e.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.InvalidTransition(e.Status, target)
		}
		prev, next := audit.StatusChange(e.Status, target)
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: e.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "equipment.statusChanged",
			ResourceType:   "equipment",
			ResourceID:     e.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	e.Status = target
	return e, nil
}

// ReportFailure files a failure report. A critical report additionally moves
// the equipment to damaged, but only when the table allows that move from the
// current status and the equipment is not already damaged; a no-move report
// produces no status audit entry.
func (s *Service) ReportFailure(ctx context.Context, ident *auth.Identity, fr *FailureReport) error {
	if fr.Description == "" {
		return apperr.Validation("failure description is required", "खराबी का विवरण आवश्यक है")
	}
	if !validCriticality(fr.Urgency) {
		return apperr.Validation("urgency must be low, medium, high or critical", "तात्कालिकता low, medium, high या critical होनी चाहिए")
	}

	e, err := s.equipment.GetByID(ctx, fr.EquipmentID)
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := auth.CheckWrite(e.OrganizationID, ident.OrganizationID); err != nil {
		return err
	}

	fr.OrganizationID = e.OrganizationID
	fr.CreatedBy = ident.UserID

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.failures.Create(ctx, fr); err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: e.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "equipment.failureReported",
			ResourceType:   "failureReport",
			ResourceID:     fr.ID,
			NewValues:      map[string]interface{}{"equipment_id": e.ID.String(), "urgency": fr.Urgency},
		}); err != nil {
			return err
		}

		if fr.Urgency != CriticalityCritical ||
			e.Status == lifecycle.EquipmentDamaged ||
			!lifecycle.CanTransition(lifecycle.KindEquipment, e.Status, lifecycle.EquipmentDamaged) {
			return nil
		}

		moved, err := s.equipment.UpdateStatus(ctx, e.ID, e.Status, lifecycle.EquipmentDamaged)
		if err != nil || !moved {
			return err
		}
		prev, next := audit.StatusChange(e.Status, lifecycle.EquipmentDamaged)
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: e.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "equipment.statusChanged",
			ResourceType:   "equipment",
			ResourceID:     e.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
}

func (s *Service) ListFailures(ctx context.Context, ident *auth.Identity, equipmentID uuid.UUID) ([]*FailureReport, error) {
	return s.failures.ListByEquipment(ctx, ident.OrganizationID, equipmentID)
}

func (s *Service) ScheduleMaintenance(ctx context.Context, ident *auth.Identity, m *MaintenanceRecord) error {
	if m.ScheduledAt.IsZero() {
		return apperr.Validation("scheduled_at is required", "scheduled_at आवश्यक है")
	}

	e, err := s.equipment.GetByID(ctx, m.EquipmentID)
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := auth.CheckWrite(e.OrganizationID, ident.OrganizationID); err != nil {
		return err
	}

	m.OrganizationID = e.OrganizationID
	m.CreatedBy = ident.UserID

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.maintenance.Create(ctx, m); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: e.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "equipment.maintenanceScheduled",
			ResourceType:   "maintenanceRecord",
			ResourceID:     m.ID,
			NewValues:      map[string]interface{}{"equipment_id": e.ID.String(), "scheduled_at": m.ScheduledAt.Format(time.RFC3339)},
		})
		return err
	})
}

func (s *Service) CompleteMaintenance(ctx context.Context, ident *auth.Identity, id uuid.UUID) error {
	m, err := s.maintenance.GetByID(ctx, id)
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := auth.CheckWrite(m.OrganizationID, ident.OrganizationID); err != nil {
		return err
	}
	if m.CompletedAt != nil {
		return apperr.Validation("maintenance record is already completed", "रखरखाव रिकॉर्ड पहले से पूर्ण है")
	}

	now := time.Now().UTC()
	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.maintenance.Complete(ctx, id, now); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: m.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "equipment.maintenanceCompleted",
			ResourceType:   "maintenanceRecord",
			ResourceID:     m.ID,
			NewValues:      map[string]interface{}{"completed_at": now.Format(time.RFC3339)},
		})
		return err
	})
}

func (s *Service) ListMaintenance(ctx context.Context, ident *auth.Identity, equipmentID uuid.UUID) ([]*MaintenanceRecord, error) {
	return s.maintenance.ListByEquipment(ctx, ident.OrganizationID, equipmentID)
}

func (s *Service) CreateSupply(ctx context.Context, ident *auth.Identity, item *SupplyItem) error {
	if item.Name == "" {
		return apperr.Validation("supply name is required", "सामग्री का नाम आवश्यक है")
	}
	if item.CurrentStock < 0 || item.ReorderPoint < 0 {
		return apperr.Validation("stock levels cannot be negative", "स्टॉक स्तर ऋणात्मक नहीं हो सकता")
	}

	item.OrganizationID = ident.OrganizationID
	item.CreatedBy = ident.UserID

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.supplies.Create(ctx, item); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: item.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "supply.created",
			ResourceType:   "supplyItem",
			ResourceID:     item.ID,
			NewValues:      map[string]interface{}{"name": item.Name, "current_stock": item.CurrentStock, "reorder_point": item.ReorderPoint},
		})
		return err
	})
}

func (s *Service) AdjustSupplyStock(ctx context.Context, ident *auth.Identity, id uuid.UUID, delta int) (*SupplyItem, error) {
	if delta == 0 {
		return nil, apperr.Validation("delta cannot be zero", "परिवर्तन शून्य नहीं हो सकता")
	}

	item, err := s.supplies.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(item.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		level, err := s.supplies.AdjustStock(ctx, id, delta)
		if err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: item.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "supply.stockAdjusted",
			ResourceType:   "supplyItem",
			ResourceID:     item.ID,
			PreviousValues: map[string]interface{}{"current_stock": item.CurrentStock},
			NewValues:      map[string]interface{}{"current_stock": level},
		})
		item.CurrentStock = level
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) ListSupplies(ctx context.Context, ident *auth.Identity, limit, offset int) ([]*SupplyItem, int, error) {
	return s.supplies.ListByOrganization(ctx, ident.OrganizationID, limit, offset)
}
