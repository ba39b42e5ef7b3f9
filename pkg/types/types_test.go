package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsAnyShape(t *testing.T) {
	cases := map[string]string{
		`"Airplane"`:                 "Airplane",
		`3`:                          "3",
		`true`:                       "true",
		`null`:                       "",
		`{"mode": "flight"}`:         "flight",
		`{"value": {"mode": "air"}}`: "air",
		`["air"]`:                    `["air"]`,
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			var tp TransportationPreferences
			err := json.Unmarshal([]byte(`{"primaryMode": `+raw+`}`), &tp)
			require.NoError(t, err)
			assert.Equal(t, want, tp.PrimaryMode.String())
		})
	}
}

func TestFlexStringNormalized(t *testing.T) {
	assert.Equal(t, "airplane", FlexString("  AirPlane ").Normalized())
}

func TestGenerationRequestCloneIsDeep(t *testing.T) {
	req := &GenerationRequest{
		Destination:       "Lisbon",
		MustInclude:       []string{"tram 28"},
		PreferenceProfile: &PreferenceProfile{Interests: []string{"fado"}, Transportation: &TransportationPreferences{PrimaryMode: "ground"}},
		FlightPreferences: &FlightPreferences{PreferredAirlines: []string{"TAP"}},
		UserInfo:          &UserInfo{UID: "u1", BlockedUsers: []string{"u2"}},
	}

	c := req.Clone()
	c.MustInclude[0] = "changed"
	c.PreferenceProfile.Interests[0] = "changed"
	c.PreferenceProfile.Transportation.PrimaryMode = "air"
	c.FlightPreferences.PreferredAirlines[0] = "changed"
	c.UserInfo.BlockedUsers[0] = "changed"

	assert.Equal(t, "tram 28", req.MustInclude[0])
	assert.Equal(t, "fado", req.PreferenceProfile.Interests[0])
	assert.Equal(t, FlexString("ground"), req.PreferenceProfile.Transportation.PrimaryMode)
	assert.Equal(t, "TAP", req.FlightPreferences.PreferredAirlines[0])
	assert.Equal(t, "u2", req.UserInfo.BlockedUsers[0])
}

func TestPlaceEnriched(t *testing.T) {
	tier := 0
	assert.False(t, Place{Name: "bare"}.Enriched())
	assert.True(t, Place{Phone: "+81"}.Enriched())
	assert.True(t, Place{Website: "https://example.com"}.Enriched())
	assert.True(t, Place{PriceLevel: &tier}.Enriched())
}
