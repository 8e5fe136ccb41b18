package model

import (
	"strconv"

	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// SCHEMA KEYS
// =============================================================================

// Export keys of the header fields.
const (
	KeyProduct   = "Prodotto"
	KeyCategory  = "Categoria"
	KeyImage     = "@image_01"
	KeySheet     = "@image_scheda"
	KeyTitle     = "Nome Articolo"
	KeySubtitle  = "Sottotitolo"
	KeyCode      = "Codice Articolo"
	KeyDimension = "Dimensione"
	KeyGlass     = "Per Vetro"
	KeyMaterial  = "Materiale"
	KeyUM        = "UM"
	KeyTechSheet = "@image_SchedeTecniche"
)

// MaxFixedSlots is the number of variant slots in the fixed schema.
const MaxFixedSlots = 5

var (
	baseStart = []string{KeyProduct, KeyCategory, KeyImage, KeySheet, KeyTitle, KeySubtitle, KeyCode}
	baseEnd   = []string{KeyDimension, KeyGlass, KeyMaterial, KeyUM, KeyTechSheet}
)

// Slot key helpers. Slots are numbered from 1.
func CodeKey(n int) string        { return "cod" + strconv.Itoa(n) }
func PriceKey(n int) string       { return "Prezzo_cod" + strconv.Itoa(n) }
func FinishKey(n int) string      { return "fin" + strconv.Itoa(n) }
func FinishImageKey(n int) string { return "@image_fin" + strconv.Itoa(n) }
func VariantKey(n int) string     { return "var" + strconv.Itoa(n) }

// FixedKeys returns the schema of classic and senza_separatore rows.
func FixedKeys() []string {
	keys := make([]string, 0, len(baseStart)+4*MaxFixedSlots+len(baseEnd))
	keys = append(keys, baseStart...)
	for n := 1; n <= MaxFixedSlots; n++ {
		keys = append(keys, CodeKey(n), PriceKey(n), FinishKey(n), FinishImageKey(n))
	}
	return append(keys, baseEnd...)
}

// DynamicKeys returns the schema of morsetti and tubi rows with n slots.
// n below 1 is treated as 1.
func DynamicKeys(n int) []string {
	if n < 1 {
		n = 1
	}
	keys := make([]string, 0, len(baseStart)+3*n+len(baseEnd))
	keys = append(keys, baseStart...)
	for i := 1; i <= n; i++ {
		keys = append(keys, CodeKey(i), PriceKey(i), VariantKey(i))
	}
	return append(keys, baseEnd...)
}

// ExportKeys returns the schema for exporting records in mode. Dynamic
// schemas are sized to the highest populated codN across all records.
func ExportKeys(mode types.Mode, records []types.Record) []string {
	if !mode.Dynamic() {
		return FixedKeys()
	}
	maxIndex := 1
	for _, record := range records {
		if n := MaxVariantIndex(record); n > maxIndex {
			maxIndex = n
		}
	}
	return DynamicKeys(maxIndex)
}

// =============================================================================
// FLATTENING
// =============================================================================

// Keys returns the schema of this row alone.
func (r Row) Keys() []string {
	if r.Mode.Dynamic() {
		return DynamicKeys(len(r.Slots))
	}
	return FixedKeys()
}

// Record flattens the row. Every key of the row's schema is present; slots
// that are not filled are empty strings.
func (r Row) Record() types.Record {
	record := make(types.Record, len(r.Keys()))
	for _, key := range r.Keys() {
		record[key] = ""
	}

	record[KeyProduct] = r.Product
	record[KeyCategory] = r.Category
	record[KeyImage] = r.Image
	record[KeySheet] = r.Sheet
	record[KeyTitle] = r.Title
	record[KeySubtitle] = r.Subtitle
	record[KeyCode] = r.Code
	record[KeyDimension] = r.Dimension
	record[KeyGlass] = r.Glass
	record[KeyMaterial] = r.Material
	record[KeyUM] = r.UM
	record[KeyTechSheet] = r.TechSheet

	for i, slot := range r.Slots {
		n := i + 1
		record[CodeKey(n)] = slot.Code
		record[PriceKey(n)] = slot.Price
		if r.Mode.Dynamic() {
			record[VariantKey(n)] = slot.Variant
		} else {
			record[FinishKey(n)] = slot.Finish
			record[FinishImageKey(n)] = slot.FinishImage
		}
	}

	return record
}

// FromRecord rebuilds a row from a flat record. Slots are read up to the
// highest populated codN (at most MaxFixedSlots for fixed modes); empty slots
// in between are kept so positions survive the round trip.
func FromRecord(record types.Record, mode types.Mode) Row {
	row := Row{
		Mode:      mode,
		Product:   record[KeyProduct],
		Category:  record[KeyCategory],
		Image:     record[KeyImage],
		Sheet:     record[KeySheet],
		Title:     record[KeyTitle],
		Subtitle:  record[KeySubtitle],
		Code:      record[KeyCode],
		Dimension: record[KeyDimension],
		Glass:     record[KeyGlass],
		Material:  record[KeyMaterial],
		UM:        record[KeyUM],
		TechSheet: record[KeyTechSheet],
	}

	n := MaxVariantIndex(record)
	if !mode.Dynamic() && n > MaxFixedSlots {
		n = MaxFixedSlots
	}
	for i := 1; i <= n; i++ {
		slot := Slot{Code: record[CodeKey(i)], Price: record[PriceKey(i)]}
		if mode.Dynamic() {
			slot.Variant = record[VariantKey(i)]
		} else {
			slot.Finish = record[FinishKey(i)]
			slot.FinishImage = record[FinishImageKey(i)]
		}
		row.Slots = append(row.Slots, slot)
	}

	return row
}
