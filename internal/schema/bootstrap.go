// Package schema creates missing allowlisted tables at process start so a
// fresh database serves the generic CRUD surface without manual setup.
package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galvan-crm/galvan/internal/registry"
)

const productDDL = `CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	stok_kodu VARCHAR(255),
	stok_adi TEXT,
	aciklama TEXT,
	grup_kodu VARCHAR(50),
	kod_1 VARCHAR(50),
	kod_2 VARCHAR(50),
	muh_detay VARCHAR(50),
	depo_kodu VARCHAR(50),
	br_1 VARCHAR(10),
	br_2 VARCHAR(10),
	pay_1 INT,
	payda_1 NUMERIC(10, 3),
	cevrim_degeri_1 NUMERIC(10, 4),
	cevrim_pay_2 INT,
	cevrim_payda_2 INT,
	cevrim_degeri_2 NUMERIC(10, 4),
	cap NUMERIC(10, 4),
	kaplama INT,
	min_mukavemet INT,
	max_mukavemet INT,
	tolerans_plus NUMERIC(10, 4),
	tolerans_minus NUMERIC(10, 4),
	ic_cap INT,
	dis_cap INT,
	kg INT,
	mm_gt_id UUID,
	ym_gt_id UUID,
	ym_st_id UUID,
	filmasin INT,
	quality VARCHAR(10),
	satis_kdv_orani VARCHAR(10),
	alis_kdv_orani VARCHAR(10),
	stok_turu VARCHAR(10),
	esnek_yapilandir VARCHAR(10),
	super_recete_kullanilsin VARCHAR(10),
	alis_doviz_tipi INT,
	gumruk_tarife_kodu VARCHAR(50),
	ingilizce_isim TEXT,
	amb_shrink VARCHAR(50),
	shrink VARCHAR(50),
	unwinding VARCHAR(50),
	cast_kont VARCHAR(50),
	helix_kont VARCHAR(50),
	elongation VARCHAR(50),
	ozel_saha_1_say INT
)`

const recipeDDL = `CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	mamul_kodu VARCHAR(255),
	bilesen_kodu VARCHAR(255),
	miktar NUMERIC(15, 8),
	sira_no INT,
	operasyon_bilesen VARCHAR(50),
	olcu_br VARCHAR(10),
	olcu_br_bilesen VARCHAR(10),
	aciklama TEXT,
	ua_dahil_edilsin VARCHAR(10),
	son_operasyon VARCHAR(10),
	uretim_suresi NUMERIC(15, 8),
	recete_top NUMERIC(10, 4),
	fire_orani NUMERIC(10, 8),
	mm_gt_id UUID,
	ym_gt_id UUID,
	ym_st_id UUID
)`

const relationshipDDL = `CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	mm_gt_id UUID NOT NULL,
	ym_st_id UUID NOT NULL,
	sira INT,
	UNIQUE(mm_gt_id, ym_st_id)
)`

const requestDDL = `CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	status VARCHAR(50) DEFAULT 'pending',
	data JSONB,
	title VARCHAR(255),
	description TEXT,
	created_by VARCHAR(255),
	processed_by VARCHAR(255),
	rejection_reason TEXT,
	processed_at TIMESTAMPTZ,
	cap NUMERIC(10, 4),
	kod_2 VARCHAR(50),
	kaplama INT,
	min_mukavemet INT,
	max_mukavemet INT,
	kg INT,
	ic_cap INT,
	dis_cap INT,
	tolerans_plus NUMERIC(10, 4),
	tolerans_minus NUMERIC(10, 4),
	shrink VARCHAR(50),
	unwinding VARCHAR(50)
)`

const userInputDDL = `CREATE TABLE IF NOT EXISTS gal_cost_cal_user_input_values (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	ash NUMERIC(10, 4) NOT NULL DEFAULT 5.54,
	lapa NUMERIC(10, 4) NOT NULL DEFAULT 2.73,
	uretim_kapasitesi_aylik INTEGER NOT NULL DEFAULT 2800,
	toplam_tuketilen_asit INTEGER NOT NULL DEFAULT 30000,
	ortalama_uretim_capi NUMERIC(10, 4) NOT NULL DEFAULT 3.08,
	paketlemedkadet INTEGER NOT NULL DEFAULT 10,
	created_by VARCHAR(255)
)`

const tlcHizlarDDL = `CREATE TABLE IF NOT EXISTS gal_cost_cal_user_tlc_hizlar (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
	giris_capi NUMERIC(5,2) NOT NULL,
	cikis_capi NUMERIC(5,2) NOT NULL,
	kod VARCHAR(15) NOT NULL,
	total_red NUMERIC(12,9),
	kafa_sayisi INTEGER,
	calisma_hizi NUMERIC(5,2) NOT NULL,
	uretim_kg_saat NUMERIC(12,4),
	elektrik_sarfiyat_kw_sa NUMERIC(6,2),
	elektrik_sarfiyat_kw_ton NUMERIC(8,4)
)`

// Bootstrap ensures every allowlisted table exists.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, d := range registry.Tables() {
		ddl := statementFor(d)
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("schema: create %s: %w", d.Name, err)
		}
		logger.Debug("table ensured", slog.String("table", d.Name))
	}
	return nil
}

func statementFor(d registry.Descriptor) string {
	switch {
	case d.Name == "gal_cost_cal_user_input_values":
		return userInputDDL
	case d.Name == "gal_cost_cal_user_tlc_hizlar":
		return tlcHizlarDDL
	case d.Kind == registry.Recipe:
		return fmt.Sprintf(recipeDDL, d.Name)
	case d.Kind == registry.Relationship:
		return fmt.Sprintf(relationshipDDL, d.Name)
	case d.Kind == registry.Request:
		return fmt.Sprintf(requestDDL, d.Name)
	default:
		return fmt.Sprintf(productDDL, d.Name)
	}
}
