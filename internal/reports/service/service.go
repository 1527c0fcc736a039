package service

import (
	"context"
	"time"

	catalogrepo "github.com/vaxstock/vaxstock-backend/internal/catalog/repository"
	inventoryrepo "github.com/vaxstock/vaxstock-backend/internal/inventory/repository"
	reconcilesvc "github.com/vaxstock/vaxstock-backend/internal/reconcile/service"
	"github.com/vaxstock/vaxstock-backend/internal/reports"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

// ReportService derives the fiscal cost table and dashboard metrics.
type ReportService struct {
	engine  *reconcilesvc.ReconcileService
	items   *catalogrepo.ItemRepository
	entries *inventoryrepo.EntryRepository
	logger  *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(
	engine *reconcilesvc.ReconcileService,
	items *catalogrepo.ItemRepository,
	entries *inventoryrepo.EntryRepository,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		engine:  engine,
		items:   items,
		entries: entries,
		logger:  log,
	}
}

// Fiscal derives the monthly cost table
func (s *ReportService) Fiscal(ctx context.Context, monthIndex, year int) (*reports.FiscalReport, error) {
	data, err := s.engine.Data(ctx, year)
	if err != nil {
		return nil, err
	}

	costs, _, err := s.monthConfigs(ctx, monthIndex)
	if err != nil {
		return nil, err
	}

	production, err := s.entries.GetProduction(ctx, monthIndex, year)
	if err != nil {
		return nil, err
	}

	report := reports.BuildFiscalReport(data.Items, data.Chain, costs, monthIndex, production)
	return &report, nil
}

// Dashboard derives the dashboard metrics for a month
func (s *ReportService) Dashboard(ctx context.Context, monthIndex, year int, now time.Time) (*reports.DashboardMetrics, error) {
	data, err := s.engine.Data(ctx, year)
	if err != nil {
		return nil, err
	}

	costs, minStock, err := s.monthConfigs(ctx, monthIndex)
	if err != nil {
		return nil, err
	}

	metrics := reports.BuildDashboard(
		data.Items, data.Chain, costs, minStock, data.Orders, monthIndex, now)
	return &metrics, nil
}

func (s *ReportService) monthConfigs(ctx context.Context, monthIndex int) (map[string]int64, map[string]int, error) {
	configs, err := s.items.ConfigsForMonth(ctx, monthIndex)
	if err != nil {
		return nil, nil, err
	}

	costs := make(map[string]int64, len(configs))
	minStock := make(map[string]int, len(configs))
	for itemID, cfg := range configs {
		costs[itemID] = cfg.AverageCostCents
		minStock[itemID] = cfg.MinStock
	}
	return costs, minStock, nil
}
