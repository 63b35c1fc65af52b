package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/types"
)

func TestDecodeVaccinationFoldsLegacyMaladie(t *testing.T) {
	details, err := DecodeProphylaxieDetails(ProphylaxieVaccination,
		[]byte(`{"maladie":"Grippe","maladies":["Tétanos","Grippe"],"vaccin":"Equip","lot":"L1"}`))
	require.NoError(t, err)

	v, ok := details.(VaccinationDetails)
	require.True(t, ok)
	assert.Equal(t, []string{"Tétanos", "Grippe"}, v.Maladies)
	assert.Equal(t, "Equip", v.Vaccin)
	assert.Equal(t, "L1", v.Lot)
}

func TestDecodeVaccinationScalarMaladies(t *testing.T) {
	details, err := DecodeProphylaxieDetails(ProphylaxieVaccination, []byte(`{"maladies":"Rhinopneumonie"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rhinopneumonie"}, Maladies(details))
}

func TestDecodeVariants(t *testing.T) {
	details, err := DecodeProphylaxieDetails(ProphylaxieVermifugation, []byte(`{"produit":"Eqvalan","molecule":"ivermectine","dose":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, VermifugationDetails{Produit: "Eqvalan", Molecule: "ivermectine", Dose: "1"}, details)
	assert.Nil(t, Maladies(details))

	details, err = DecodeProphylaxieDetails(ProphylaxieSoinsDentaires, nil)
	require.NoError(t, err)
	assert.Equal(t, SoinsDentairesDetails{}, details)

	details, err = DecodeProphylaxieDetails(ProphylaxieAutre, []byte(`{"description":"ferrure"}`))
	require.NoError(t, err)
	assert.Equal(t, AutreDetails{Description: "ferrure"}, details)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := DecodeProphylaxieDetails("Homéopathie", []byte(`{}`))
	require.Error(t, err)

	ce, ok := types.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, 400, ce.Code)
}

func TestNormalizeDropsUnknownFields(t *testing.T) {
	j, err := NormalizeProphylaxieDetails(ProphylaxieAutre, []byte(`{"description":"x","extra":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"x"}`, string(j.JSON))
}

func TestRolePermissions(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	vet := &User{Role: RoleVeterinaire}
	consultant := &User{Role: RoleConsultant}

	assert.True(t, admin.Can(PermRecordsDelete))
	assert.True(t, vet.Can(PermHorsesStatus))
	assert.False(t, vet.Can(PermRecordsDelete))
	assert.True(t, consultant.Can(PermRecordsRead))
	assert.False(t, consultant.Can(PermRecordsWrite))
	assert.Empty(t, Permissions("intruder"))
}

func TestRadiationRetention(t *testing.T) {
	assert.True(t, RetainsCause(MotifMort))
	assert.True(t, RetainsCause(MotifEuthanasie))
	assert.False(t, RetainsCause(MotifVente))
	assert.True(t, RetainsMotif(MotifCession))
	assert.True(t, RetainsMotif(MotifAutre))
	assert.False(t, RetainsMotif(MotifMort))
}
