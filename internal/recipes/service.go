// Package recipes reports whether a product hierarchy has a complete set
// of bill-of-materials lines: root and derived recipes, plus the recipe of
// the main component resolved through the relationship table.
package recipes

import (
	"context"
	"fmt"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
)

// Report is the completeness check result.
type Report struct {
	Status        string  `json:"status"`
	MMGTID        string  `json:"mm_gt_id"`
	YMGTID        string  `json:"ym_gt_id"`
	MMGTStokKodu  *string `json:"mm_gt_stok_kodu"`
	YMGTStokKodu  *string `json:"ym_gt_stok_kodu"`
	MMGTRecipes   int64   `json:"mm_gt_recipes"`
	YMGTRecipes   int64   `json:"ym_gt_recipes"`
	MainYMSTID    *string `json:"main_ym_st_id"`
	YMSTRecipes   int64   `json:"ym_st_recipes"`
	HasAllRecipes bool    `json:"has_all_recipes"`
}

// Repository answers the lookups behind a completeness check.
type Repository interface {
	RootRecipeCount(ctx context.Context, mmGtID string) (int64, error)
	DerivedRecipeCount(ctx context.Context, ymGtID string) (int64, error)
	ComponentRecipeCount(ctx context.Context, ymStID string) (int64, error)
	StockCode(ctx context.Context, table, id string) (*string, error)
	// MainComponentID resolves the relationship row with the lowest
	// ordering value; nil when the root has no components.
	MainComponentID(ctx context.Context, mmGtID string) (*string, error)
}

// Service runs completeness checks.
type Service struct {
	repo Repository
}

// NewService creates the checker.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Check inspects the recipe tables for the given root and derived ids.
func (s *Service) Check(ctx context.Context, mmGtID, ymGtID string) (Report, error) {
	if mmGtID == "" || ymGtID == "" {
		return Report{}, fmt.Errorf("%w: mm_gt_id and ym_gt_id are required", httpx.ErrValidation)
	}

	rootCount, err := s.repo.RootRecipeCount(ctx, mmGtID)
	if err != nil {
		return Report{}, fmt.Errorf("recipes: root count: %w", err)
	}
	derivedCount, err := s.repo.DerivedRecipeCount(ctx, ymGtID)
	if err != nil {
		return Report{}, fmt.Errorf("recipes: derived count: %w", err)
	}

	report := Report{
		Status:      "success",
		MMGTID:      mmGtID,
		YMGTID:      ymGtID,
		MMGTRecipes: rootCount,
		YMGTRecipes: derivedCount,
	}

	report.MMGTStokKodu, err = s.repo.StockCode(ctx, "gal_cost_cal_mm_gt", mmGtID)
	if err != nil {
		return Report{}, fmt.Errorf("recipes: root stock code: %w", err)
	}
	report.YMGTStokKodu, err = s.repo.StockCode(ctx, "gal_cost_cal_ym_gt", ymGtID)
	if err != nil {
		return Report{}, fmt.Errorf("recipes: derived stock code: %w", err)
	}

	report.MainYMSTID, err = s.repo.MainComponentID(ctx, mmGtID)
	if err != nil {
		return Report{}, fmt.Errorf("recipes: main component: %w", err)
	}
	if report.MainYMSTID != nil {
		report.YMSTRecipes, err = s.repo.ComponentRecipeCount(ctx, *report.MainYMSTID)
		if err != nil {
			return Report{}, fmt.Errorf("recipes: component count: %w", err)
		}
	}

	report.HasAllRecipes = rootCount > 0 && derivedCount > 0 &&
		(report.MainYMSTID == nil || report.YMSTRecipes > 0)
	return report, nil
}
