package controllers

import (
	"net/http"
	"time"

	"github.com/kolschhq/kolsch-backend/api/responses"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

// DashboardStats is the aggregate snapshot served to the dashboard.
type DashboardStats struct {
	BatchesInProcess     int `json:"batchesInProcess"`
	TotalInventoryItems  int `json:"totalInventoryItems"`
	LowStockItems        int `json:"lowStockItems"`
	EquipmentUtilization int `json:"equipmentUtilization"`
	MaintenanceNeeded    int `json:"maintenanceNeeded"`
	ScheduledBrews       int `json:"scheduledBrews"`
	ThisWeekBrews        int `json:"thisWeekBrews"`
}

// Stats computes dashboard aggregates over the caller's tenant.
func Stats(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenant, ok := listTenant(ctx)
		if !ok {
			responses.WriteSuccess(w, DashboardStats{})
			return
		}

		items, err := store.ListInventoryItems(ctx, tenant)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		equipment, err := store.ListEquipment(ctx, tenant)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		schedules, err := store.ListBrewingSchedules(ctx, tenant)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		now := time.Now()
		stats := DashboardStats{TotalInventoryItems: len(items)}

		for _, item := range items {
			if item.CurrentQuantity < item.MinimumQuantity {
				stats.LowStockItems++
			}
		}

		active := 0
		for _, eq := range equipment {
			if eq.Status == "active" {
				active++
			}
			if eq.NextMaintenance != nil && !eq.NextMaintenance.After(now) {
				stats.MaintenanceNeeded++
			}
		}
		if len(equipment) > 0 {
			stats.EquipmentUtilization = active * 100 / len(equipment)
		}

		weekStart := startOfDay(now)
		weekEnd := weekStart.AddDate(0, 0, 7)
		for _, sched := range schedules {
			switch sched.Status {
			case "in-progress":
				stats.BatchesInProcess++
			case "scheduled":
				stats.ScheduledBrews++
			}
			if !sched.StartDate.Before(weekStart) && sched.StartDate.Before(weekEnd) {
				stats.ThisWeekBrews++
			}
		}

		responses.WriteSuccess(w, stats)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
