// Package registry holds the static allowlist of tables the generic data
// layer may touch, together with the column whitelist for each of them.
package registry

import "sort"

// Kind classifies a table for dispatch decisions (cascade rules, friendly
// error messages, status filtering).
type Kind string

const (
	Plain        Kind = "plain"
	ProductRoot  Kind = "product_root"
	Derived      Kind = "derived_product"
	Component    Kind = "component"
	Recipe       Kind = "recipe"
	Relationship Kind = "relationship"
	Request      Kind = "request"
)

// Descriptor describes one allowlisted table.
type Descriptor struct {
	Name         string
	Kind         Kind
	StatusFilter bool

	columns map[string]struct{}
}

// AllowsColumn reports whether a payload key may be used as a column name
// for this table. Unknown keys are rejected before any SQL is built.
func (d Descriptor) AllowsColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Columns returns the whitelisted column names in sorted order.
func (d Descriptor) Columns() []string {
	out := make([]string, 0, len(d.columns))
	for c := range d.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// IsProduct reports whether the table holds product rows subject to the
// cascade delete rules.
func (d Descriptor) IsProduct() bool {
	switch d.Kind {
	case ProductRoot, Derived, Component:
		return true
	}
	return false
}

// IsRecipe reports whether the table holds bill-of-materials lines.
func (d Descriptor) IsRecipe() bool { return d.Kind == Recipe }

var baseColumns = []string{"id", "created_at", "updated_at"}

var productColumns = []string{
	"stok_kodu", "stok_adi", "aciklama", "grup_kodu", "kod_1", "kod_2",
	"muh_detay", "depo_kodu", "br_1", "br_2", "pay_1", "payda_1",
	"cevrim_degeri_1", "cevrim_pay_2", "cevrim_payda_2", "cevrim_degeri_2",
	"cap", "kaplama", "min_mukavemet", "max_mukavemet", "tolerans_plus",
	"tolerans_minus", "ic_cap", "dis_cap", "kg", "mm_gt_id", "ym_gt_id",
	"ym_st_id", "filmasin", "quality", "satis_kdv_orani", "alis_kdv_orani",
	"stok_turu", "esnek_yapilandir", "super_recete_kullanilsin",
	"alis_doviz_tipi", "gumruk_tarife_kodu", "ingilizce_isim", "amb_shrink",
	"shrink", "unwinding", "cast_kont", "helix_kont", "elongation",
	"ozel_saha_1_say",
}

var recipeColumns = []string{
	"mamul_kodu", "bilesen_kodu", "miktar", "sira_no", "operasyon_bilesen",
	"olcu_br", "olcu_br_bilesen", "aciklama", "ua_dahil_edilsin",
	"son_operasyon", "uretim_suresi", "recete_top", "fire_orani",
	"mm_gt_id", "ym_gt_id", "ym_st_id",
}

var relationshipColumns = []string{"mm_gt_id", "ym_st_id", "sira"}

var requestColumns = []string{
	"status", "data", "title", "description", "created_by", "processed_by",
	"rejection_reason", "processed_at", "cap", "kod_2", "kaplama",
	"min_mukavemet", "max_mukavemet", "kg", "ic_cap", "dis_cap",
	"tolerans_plus", "tolerans_minus", "shrink", "unwinding",
}

var userInputColumns = []string{
	"ash", "lapa", "uretim_kapasitesi_aylik", "toplam_tuketilen_asit",
	"ortalama_uretim_capi", "paketlemedkadet", "created_by",
}

var tlcHizlarColumns = []string{
	"giris_capi", "cikis_capi", "kod", "total_red", "kafa_sayisi",
	"calisma_hizi", "uretim_kg_saat", "elektrik_sarfiyat_kw_sa",
	"elektrik_sarfiyat_kw_ton",
}

func columnSet(groups ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, g := range groups {
		for _, c := range g {
			set[c] = struct{}{}
		}
	}
	return set
}

var descriptors = buildDescriptors()

func buildDescriptors() map[string]Descriptor {
	plain := func(name string) Descriptor {
		return Descriptor{Name: name, Kind: Plain, columns: columnSet(baseColumns, productColumns)}
	}
	list := []Descriptor{
		plain("panel_cost_cal_currency"),
		plain("panel_cost_cal_gecici_hesaplar"),
		plain("panel_cost_cal_genel_degiskenler"),
		plain("panel_cost_cal_maliyet_listesi"),
		plain("panel_cost_cal_panel_cit_degiskenler"),
		plain("panel_cost_cal_panel_list"),
		plain("panel_cost_cal_profil_degiskenler"),
		plain("panel_cost_cal_statik_degiskenler"),

		{Name: "gal_cost_cal_mm_gt", Kind: ProductRoot, columns: columnSet(baseColumns, productColumns)},
		{Name: "gal_cost_cal_ym_gt", Kind: Derived, columns: columnSet(baseColumns, productColumns)},
		{Name: "gal_cost_cal_ym_st", Kind: Component, columns: columnSet(baseColumns, productColumns)},
		{Name: "gal_cost_cal_mm_gt_recete", Kind: Recipe, columns: columnSet(baseColumns, recipeColumns)},
		{Name: "gal_cost_cal_ym_gt_recete", Kind: Recipe, columns: columnSet(baseColumns, recipeColumns)},
		{Name: "gal_cost_cal_ym_st_recete", Kind: Recipe, columns: columnSet(baseColumns, recipeColumns)},
		{Name: "gal_cost_cal_mm_gt_ym_st", Kind: Relationship, columns: columnSet(baseColumns, relationshipColumns)},
		plain("gal_cost_cal_sequence"),
		{Name: "gal_cost_cal_sal_requests", Kind: Request, StatusFilter: true, columns: columnSet(baseColumns, requestColumns)},
		{Name: "gal_cost_cal_user_input_values", Kind: Plain, columns: columnSet(baseColumns, userInputColumns)},
		{Name: "gal_cost_cal_user_tlc_hizlar", Kind: Plain, columns: columnSet(baseColumns, tlcHizlarColumns)},
	}
	out := make(map[string]Descriptor, len(list))
	for _, d := range list {
		out[d.Name] = d
	}
	return out
}

// Lookup resolves a table name against the allowlist.
func Lookup(name string) (Descriptor, bool) {
	d, ok := descriptors[name]
	return d, ok
}

// Tables returns every allowlisted descriptor, sorted by name.
func Tables() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Related table names used by the cascade orchestrator and cache
// invalidation. Kept here so the wiring lives next to the allowlist.
const (
	TableRootProduct     = "gal_cost_cal_mm_gt"
	TableDerivedProduct  = "gal_cost_cal_ym_gt"
	TableComponent       = "gal_cost_cal_ym_st"
	TableRootRecipe      = "gal_cost_cal_mm_gt_recete"
	TableDerivedRecipe   = "gal_cost_cal_ym_gt_recete"
	TableComponentRecipe = "gal_cost_cal_ym_st_recete"
	TableRelationship    = "gal_cost_cal_mm_gt_ym_st"
	TableRequests        = "gal_cost_cal_sal_requests"
	TableTLCSpeeds       = "gal_cost_cal_user_tlc_hizlar"
)
