package share

import (
	"strings"
	"testing"

	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	treasures := []models.Treasure{
		{ID: "t1", Name: "Ruby Cave", Latitude: 30.0444, Longitude: 31.2357},
		{ID: "t2", Name: "Pharaoh's Tomb", Latitude: 30.0561, Longitude: 31.2394},
	}

	code, err := Encode(treasures, "Kareem")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, Prefix))

	decoded, err := Decode(code)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	for i, d := range decoded {
		assert.Equal(t, treasures[i].Name, d.Name)
		assert.Equal(t, treasures[i].Latitude, d.Latitude)
		assert.Equal(t, treasures[i].Longitude, d.Longitude)
		assert.Equal(t, "Kareem", d.SharedBy)
	}
}

func TestDecode_CodeEmbeddedInMessage(t *testing.T) {
	code, err := Encode([]models.Treasure{{Name: "Secret Oasis", Latitude: 1, Longitude: 2}}, "A friend")
	require.NoError(t, err)

	message := "Check out this treasure I found!\n\n" + code + "\n\nSee you out there."
	decoded, err := Decode(message)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Secret Oasis", decoded[0].Name)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("not a share code")
	assert.Error(t, err)

	_, err = Decode(Prefix + "!!!not-base64!!!")
	assert.Error(t, err)

	_, err = Decode(Prefix + "aGVsbG8=") // base64("hello"), not JSON
	assert.Error(t, err)
}

func TestEncode_Empty(t *testing.T) {
	_, err := Encode(nil, "x")
	assert.Error(t, err)
}
