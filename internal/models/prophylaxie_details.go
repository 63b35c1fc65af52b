package models

import (
	"encoding/json"
	"strings"

	"github.com/localnerve/equirecords/internal/types"
)

// Prophylaxie types
const (
	ProphylaxieVaccination    = "Vaccination"
	ProphylaxieVermifugation  = "Vermifugation"
	ProphylaxieSoinsDentaires = "Soins dentaires"
	ProphylaxieAutre          = "Autre"
)

// ProphylaxieTypes lists the accepted prophylaxie types in display order
var ProphylaxieTypes = []string{
	ProphylaxieVaccination,
	ProphylaxieVermifugation,
	ProphylaxieSoinsDentaires,
	ProphylaxieAutre,
}

// ProphylaxieDetails is implemented by every details variant
type ProphylaxieDetails interface {
	prophylaxieType() string
}

// VaccinationDetails are the details of a Vaccination
type VaccinationDetails struct {
	Maladies []string `json:"maladies"`
	Vaccin   string   `json:"vaccin"`
	Lot      string   `json:"lot"`
}

// VermifugationDetails are the details of a Vermifugation
type VermifugationDetails struct {
	Produit  string `json:"produit"`
	Molecule string `json:"molecule"`
	Dose     string `json:"dose"`
}

// SoinsDentairesDetails are the details of dental care
type SoinsDentairesDetails struct {
	Acte      string `json:"acte"`
	Praticien string `json:"praticien"`
}

// AutreDetails are the details of any other preventive care
type AutreDetails struct {
	Description string `json:"description"`
}

func (VaccinationDetails) prophylaxieType() string    { return ProphylaxieVaccination }
func (VermifugationDetails) prophylaxieType() string  { return ProphylaxieVermifugation }
func (SoinsDentairesDetails) prophylaxieType() string { return ProphylaxieSoinsDentaires }
func (AutreDetails) prophylaxieType() string          { return ProphylaxieAutre }

// vaccinationInput accepts the legacy singular maladie and a scalar maladies
type vaccinationInput struct {
	Maladies types.FlexList[string] `json:"maladies"`
	Maladie  string                 `json:"maladie"`
	Vaccin   string                 `json:"vaccin"`
	Lot      string                 `json:"lot"`
}

// DecodeProphylaxieDetails decodes raw details into the variant selected by prophylaxieType.
// Empty raw input yields the zero variant.
func DecodeProphylaxieDetails(prophylaxieType string, raw []byte) (ProphylaxieDetails, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	switch prophylaxieType {
	case ProphylaxieVaccination:
		var in vaccinationInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, types.BadRequest("ValidationError", "invalid vaccination details: %v", err)
		}
		out := VaccinationDetails{Vaccin: in.Vaccin, Lot: in.Lot, Maladies: []string{}}
		seen := make(map[string]bool)
		for _, m := range append(in.Maladies.Slice(), in.Maladie) {
			m = strings.TrimSpace(m)
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			out.Maladies = append(out.Maladies, m)
		}
		return out, nil

	case ProphylaxieVermifugation:
		var out VermifugationDetails
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, types.BadRequest("ValidationError", "invalid vermifugation details: %v", err)
		}
		return out, nil

	case ProphylaxieSoinsDentaires:
		var out SoinsDentairesDetails
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, types.BadRequest("ValidationError", "invalid dental care details: %v", err)
		}
		return out, nil

	case ProphylaxieAutre:
		var out AutreDetails
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, types.BadRequest("ValidationError", "invalid details: %v", err)
		}
		return out, nil

	default:
		return nil, types.BadRequest("ValidationError", "unknown prophylaxie type %q", prophylaxieType)
	}
}

// NormalizeProphylaxieDetails decodes raw details and returns the normalized JSON column value
func NormalizeProphylaxieDetails(prophylaxieType string, raw []byte) (JSON, error) {
	details, err := DecodeProphylaxieDetails(prophylaxieType, raw)
	if err != nil {
		return JSON{}, err
	}
	return NewJSON(details)
}

// Maladies returns the diseases a vaccination covers, nil for other variants
func Maladies(details ProphylaxieDetails) []string {
	if v, ok := details.(VaccinationDetails); ok {
		return v.Maladies
	}
	return nil
}

// ValidProphylaxieType reports whether t is an accepted prophylaxie type
func ValidProphylaxieType(t string) bool {
	for _, known := range ProphylaxieTypes {
		if t == known {
			return true
		}
	}
	return false
}
