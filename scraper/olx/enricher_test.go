package olx

import (
	"context"
	"errors"
	"testing"

	"olx-car-scraper/models"
)

const detailURL = "https://www.olx.uz/d/obyavlenie/chevrolet-lacetti-2012-ID3aBc1.html"

func newTestEnricher(pages map[string]string) *Enricher {
	return NewEnricher(&fakeFetcher{pages: pages}, CurrentDetailSchema, "https://www.olx.uz")
}

func TestEnrichMapsParameters(t *testing.T) {
	e := newTestEnricher(map[string]string{detailURL: detailPageLacetti})

	attrs, err := e.Enrich(context.Background(), detailURL, "Lacetti")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if attrs.GearType != models.GearManual {
		t.Errorf("GearType: got %q", attrs.GearType)
	}
	if attrs.Color != models.ColorWhite {
		t.Errorf("Color: got %q", attrs.Color)
	}
	if attrs.FuelType != models.FuelGasoline {
		t.Errorf("FuelType: got %q", attrs.FuelType)
	}
	if attrs.Condition != models.ConditionIdeal {
		t.Errorf("Condition: got %q", attrs.Condition)
	}
	if attrs.BodyType != "Седан" || attrs.OwnerCount != "2" {
		t.Errorf("BodyType/OwnerCount: got %q/%q", attrs.BodyType, attrs.OwnerCount)
	}
	if attrs.AdditionalOptions != "Кондиционер, Электростеклоподъемники" {
		t.Errorf("AdditionalOptions: got %q", attrs.AdditionalOptions)
	}
	if attrs.OwnerType != "Частное лицо" {
		t.Errorf("OwnerType: got %q", attrs.OwnerType)
	}
	if attrs.DescriptionDetail != "Машина в отличном состоянии. Торг уместен." {
		t.Errorf("DescriptionDetail: got %q", attrs.DescriptionDetail)
	}
	if attrs.OwnerName != "Азиз" || attrs.OwnerMemberSince != "На OLX с января 2019 г." ||
		attrs.OwnerLastSeen != "Онлайн вчера в 21:10" {
		t.Errorf("owner fields: %+v", attrs)
	}
	if attrs.OwnerProfileURL != "https://www.olx.uz/list/user/abc123/" {
		t.Errorf("OwnerProfileURL: got %q", attrs.OwnerProfileURL)
	}
	if attrs.ModelMismatch {
		t.Error("ModelMismatch should be false")
	}
}

func TestEnrichModelMismatchSkipsAttributes(t *testing.T) {
	e := newTestEnricher(map[string]string{detailURL: detailPageGentra})

	attrs, err := e.Enrich(context.Background(), detailURL, "Lacetti")
	if !errors.Is(err, ErrModelMismatch) {
		t.Fatalf("expected ErrModelMismatch, got %v", err)
	}
	if !attrs.ModelMismatch {
		t.Error("ModelMismatch should be set")
	}
	if attrs.Color != "" || attrs.OwnerName != "" {
		t.Errorf("no attributes should be extracted on mismatch, got %+v", attrs)
	}
}

func TestEnrichModelMatchUsesFirstToken(t *testing.T) {
	e := newTestEnricher(map[string]string{detailURL: detailPageOddValues})

	// "lacetti" from "Lacetti SX" must match "LACETTI" on the page.
	if _, err := e.Enrich(context.Background(), detailURL, "Lacetti SX"); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
}

func TestEnrichUnknownValuesMapToEmpty(t *testing.T) {
	e := newTestEnricher(map[string]string{detailURL: detailPageOddValues})

	attrs, err := e.Enrich(context.Background(), detailURL, "Lacetti")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if attrs.GearType != "" || attrs.FuelType != "" || attrs.Condition != "" {
		t.Errorf("unknown values should map to empty, got %+v", attrs)
	}
	if attrs.Color != models.ColorBlack {
		t.Errorf("ё spelling should map, got %q", attrs.Color)
	}
	if attrs.OwnerType != "Компания" {
		t.Errorf("OwnerType: got %q", attrs.OwnerType)
	}
}

func TestEnrichFetchFailure(t *testing.T) {
	e := newTestEnricher(map[string]string{})

	_, err := e.Enrich(context.Background(), detailURL, "Lacetti")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Status != 404 {
		t.Errorf("Status: got %d", fe.Status)
	}
}

func TestLookupTables(t *testing.T) {
	if mapGearType("Вариатор") != models.GearCVT || mapGearType("Робот") != models.GearRobot {
		t.Error("gear lookup")
	}
	if mapColor("Серебристый") != models.ColorSilver || mapColor("Жёлтый") != models.ColorYellow {
		t.Error("color lookup")
	}
	if mapFuelType("Электро") != models.FuelElectric || mapFuelType("Газ") != models.FuelGas {
		t.Error("fuel lookup")
	}
	if mapCondition("Нуждается в ремонте") != models.ConditionNeedsRepair || mapCondition("Б/у") != models.ConditionUsed {
		t.Error("condition lookup")
	}
}
