// Package catalog translates survey-native CSV exports (SDSS, DESI, the NASA
// Exoplanet Science Institute table, and NEO ephemerides) into the canonical
// raw-field schema the validator understands. Connectors only rename and
// convert units; all range checking stays in the validator.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/skyfreelabs/skyfree/core"
	"github.com/skyfreelabs/skyfree/model"
)

// Translator maps one native CSV row (keyed by lower-cased header name) to a
// canonical raw record.
type Translator func(row map[string]string) (model.RawRecord, error)

// translators keyed by catalog. NEO rows may arrive either as explicit state
// vectors, as TLE pairs, or as (perihelion, eccentricity) element sets; the
// NEO translator handles all three.
func translatorFor(cat model.Catalog) (Translator, error) {
	switch cat {
	case model.CatalogSDSS:
		return translateSDSS, nil
	case model.CatalogDESI:
		return translateDESI, nil
	case model.CatalogNASAESI:
		return translateNASAESI, nil
	case model.CatalogNEO:
		return translateNEO, nil
	default:
		return nil, fmt.Errorf("%w: no connector for catalog %q", core.ErrValidation, cat)
	}
}

// Load reads a native CSV export for the given catalog and returns canonical
// raw records, one per data row. Translation failures are reported per row so
// a bad line never discards the rest of the file.
func Load(r io.Reader, cat model.Catalog) ([]model.RawRecord, []core.RowError, error) {
	translate, err := translatorFor(cat)
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty catalog file", core.ErrValidation)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var (
		records  []model.RawRecord
		failures []core.RowError
		index    int
	)
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.Reader reports malformed lines with their position; keep
			// going so one bad line does not sink the batch.
			failures = append(failures, core.RowError{Index: index, Err: err})
			index++
			continue
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = strings.TrimSpace(fields[i])
			}
		}
		raw, err := translate(row)
		if err != nil {
			failures = append(failures, core.RowError{Index: index, ID: raw.ID, Err: err})
			index++
			continue
		}
		records = append(records, raw)
		index++
	}
	return records, failures, nil
}

// LoadAndIngest is the ingest front door: native CSV in, validated records
// out, with connector and validator failures merged into one per-row list.
func LoadAndIngest(r io.Reader, cat model.Catalog) ([]*model.MeasurementRecord, []core.RowError, error) {
	rows, failures, err := Load(r, cat)
	if err != nil {
		return nil, nil, err
	}
	records, rejects := core.IngestBatch(rows, cat)
	failures = append(failures, rejects...)
	return records, failures, nil
}

// SDSS spectroscopic export: objid, ra, dec, z, class, plus modelMag_* when
// photometry was requested.
func translateSDSS(row map[string]string) (model.RawRecord, error) {
	raw := model.RawRecord{ID: row["objid"], Fields: map[string]string{}}
	if raw.ID == "" {
		return raw, fmt.Errorf("%w: objid is required", core.ErrValidation)
	}
	copyField(row, raw.Fields, "ra", core.FieldRA)
	copyField(row, raw.Fields, "dec", core.FieldDec)
	copyField(row, raw.Fields, "z", core.FieldRedshift)
	copyField(row, raw.Fields, "class", core.FieldClass)
	for _, b := range []model.Band{model.BandG, model.BandR, model.BandZ} {
		copyField(row, raw.Fields, "modelmag_"+string(b), core.MagnitudeField(b))
		copyField(row, raw.Fields, "modelmagerr_"+string(b), core.MagnitudeErrField(b))
	}

	// SDSS publishes proper motion per axis; the engine wants the total
	// on-sky rate.
	if pmra, pmdec := row["pmra"], row["pmdec"]; pmra != "" && pmdec != "" {
		a, errA := strconv.ParseFloat(pmra, 64)
		d, errD := strconv.ParseFloat(pmdec, 64)
		if errA != nil || errD != nil {
			return raw, fmt.Errorf("%w: pmra/pmdec must be numeric", core.ErrValidation)
		}
		raw.Fields[core.FieldProperMot] = formatFloat(math.Hypot(a, d))
	}
	return raw, nil
}

// DESI target export carries linear fluxes in nanomaggies rather than
// magnitudes; the connector converts so downstream code only ever sees
// magnitudes.
func translateDESI(row map[string]string) (model.RawRecord, error) {
	raw := model.RawRecord{ID: row["targetid"], Fields: map[string]string{}}
	if raw.ID == "" {
		return raw, fmt.Errorf("%w: targetid is required", core.ErrValidation)
	}
	copyField(row, raw.Fields, "target_ra", core.FieldRA)
	copyField(row, raw.Fields, "target_dec", core.FieldDec)
	copyField(row, raw.Fields, "z", core.FieldRedshift)
	copyField(row, raw.Fields, "spectype", core.FieldClass)
	if _, ok := raw.Fields[core.FieldClass]; !ok {
		copyField(row, raw.Fields, "type", core.FieldClass)
	}

	for _, b := range []model.Band{model.BandG, model.BandR, model.BandZ, model.BandW1, model.BandW2} {
		s, ok := row["flux_"+string(b)]
		if !ok || s == "" {
			continue
		}
		flux, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return raw, fmt.Errorf("%w: flux_%s: %v", core.ErrValidation, b, err)
		}
		mag, err := core.MagnitudeFromFlux(flux)
		if err != nil {
			return raw, fmt.Errorf("flux_%s: %w", b, err)
		}
		raw.Fields[core.MagnitudeField(b)] = formatFloat(mag)
	}
	return raw, nil
}

// NASA Exoplanet Science Institute confirmed-planets table.
func translateNASAESI(row map[string]string) (model.RawRecord, error) {
	raw := model.RawRecord{ID: row["pl_name"], Fields: map[string]string{}}
	if raw.ID == "" {
		return raw, fmt.Errorf("%w: pl_name is required", core.ErrValidation)
	}
	copyField(row, raw.Fields, "ra", core.FieldRA)
	copyField(row, raw.Fields, "dec", core.FieldDec)
	copyField(row, raw.Fields, "pl_orbper", core.FieldPeriodDays)
	copyField(row, raw.Fields, "pl_orbeccen", core.FieldEcc)
	copyField(row, raw.Fields, "sy_dist", core.FieldDistance)
	return raw, nil
}

// JPL small-body export. Element-set rows carry q (AU) and e; tracked objects
// instead carry a TLE pair plus epoch, which we propagate to a geocentric
// state vector here so the engine sees one uniform shape.
func translateNEO(row map[string]string) (model.RawRecord, error) {
	id := row["full_name"]
	if id == "" {
		id = row["targetname"]
	}
	if id == "" {
		id = row["des"]
	}
	raw := model.RawRecord{ID: id, Fields: map[string]string{}}
	if raw.ID == "" {
		return raw, fmt.Errorf("%w: full_name, targetname or des is required", core.ErrValidation)
	}
	copyField(row, raw.Fields, "ra", core.FieldRA)
	copyField(row, raw.Fields, "dec", core.FieldDec)
	copyField(row, raw.Fields, "q", core.FieldPerihelion)
	copyField(row, raw.Fields, "e", core.FieldEcc)

	line1, line2 := row["tle_line1"], row["tle_line2"]
	if line1 == "" && line2 == "" {
		return raw, nil
	}

	epoch := time.Now().UTC()
	if s := row["epoch"]; s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return raw, fmt.Errorf("%w: epoch: %v", core.ErrValidation, err)
		}
		epoch = parsed
	}
	sv, err := core.StateVectorFromTLE(line1, line2, epoch)
	if err != nil {
		return raw, err
	}
	raw.Fields[core.FieldPosX] = formatFloat(sv.Position.X)
	raw.Fields[core.FieldPosY] = formatFloat(sv.Position.Y)
	raw.Fields[core.FieldPosZ] = formatFloat(sv.Position.Z)
	raw.Fields[core.FieldVelX] = formatFloat(sv.Velocity.X)
	raw.Fields[core.FieldVelY] = formatFloat(sv.Velocity.Y)
	raw.Fields[core.FieldVelZ] = formatFloat(sv.Velocity.Z)
	// TLE-derived vectors are geocentric.
	raw.Fields[core.FieldMu] = formatFloat(core.EarthMuKm3S2)
	return raw, nil
}

func copyField(src map[string]string, dst map[string]string, from, to string) {
	if v, ok := src[from]; ok && v != "" {
		dst[to] = v
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
