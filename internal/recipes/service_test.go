package recipes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
)

type mockRepo struct {
	rootCount      int64
	derivedCount   int64
	componentCount int64
	stockCodes     map[string]*string
	mainComponent  *string
	err            error
}

func (m *mockRepo) RootRecipeCount(ctx context.Context, mmGtID string) (int64, error) {
	return m.rootCount, m.err
}

func (m *mockRepo) DerivedRecipeCount(ctx context.Context, ymGtID string) (int64, error) {
	return m.derivedCount, m.err
}

func (m *mockRepo) ComponentRecipeCount(ctx context.Context, ymStID string) (int64, error) {
	return m.componentCount, m.err
}

func (m *mockRepo) StockCode(ctx context.Context, table, id string) (*string, error) {
	return m.stockCodes[table], m.err
}

func (m *mockRepo) MainComponentID(ctx context.Context, mmGtID string) (*string, error) {
	return m.mainComponent, m.err
}

func strPtr(s string) *string { return &s }

func TestCheckComplete(t *testing.T) {
	repo := &mockRepo{
		rootCount:      4,
		derivedCount:   3,
		componentCount: 2,
		mainComponent:  strPtr("st-1"),
		stockCodes: map[string]*string{
			"gal_cost_cal_mm_gt": strPtr("GT.NIT.0250.01"),
			"gal_cost_cal_ym_gt": strPtr("YM.GT.0250.01"),
		},
	}
	svc := NewService(repo)

	report, err := svc.Check(context.Background(), "mm-1", "ym-1")
	require.NoError(t, err)
	require.True(t, report.HasAllRecipes)
	require.Equal(t, "success", report.Status)
	require.EqualValues(t, 4, report.MMGTRecipes)
	require.EqualValues(t, 3, report.YMGTRecipes)
	require.EqualValues(t, 2, report.YMSTRecipes)
	require.Equal(t, "GT.NIT.0250.01", *report.MMGTStokKodu)
	require.Equal(t, "st-1", *report.MainYMSTID)
}

func TestCheckMissingRootRecipes(t *testing.T) {
	repo := &mockRepo{derivedCount: 2, mainComponent: strPtr("st-1"), componentCount: 1}
	svc := NewService(repo)

	report, err := svc.Check(context.Background(), "mm-1", "ym-1")
	require.NoError(t, err)
	require.False(t, report.HasAllRecipes)
}

func TestCheckMissingComponentRecipes(t *testing.T) {
	repo := &mockRepo{rootCount: 1, derivedCount: 1, mainComponent: strPtr("st-1")}
	svc := NewService(repo)

	report, err := svc.Check(context.Background(), "mm-1", "ym-1")
	require.NoError(t, err)
	require.False(t, report.HasAllRecipes, "main component without its recipe is incomplete")
}

func TestCheckNoComponentsStillComplete(t *testing.T) {
	// Hierarchies without a component relationship only need the root and
	// derived recipe sets.
	repo := &mockRepo{rootCount: 1, derivedCount: 1}
	svc := NewService(repo)

	report, err := svc.Check(context.Background(), "mm-1", "ym-1")
	require.NoError(t, err)
	require.True(t, report.HasAllRecipes)
	require.Nil(t, report.MainYMSTID)
	require.Zero(t, report.YMSTRecipes)
}

func TestCheckRequiresBothIDs(t *testing.T) {
	svc := NewService(&mockRepo{})
	_, err := svc.Check(context.Background(), "", "ym-1")
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.Check(context.Background(), "mm-1", "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}
