// Package share encodes treasure locations into copy-pasteable codes so
// players can exchange spots out of band. The payload is versioned JSON,
// base64-wrapped behind a fixed prefix.
package share

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/errors"
)

const (
	Prefix  = "GEOQUEST:"
	Version = 1
)

type sharedTreasure struct {
	Name      string  `json:"n"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

type payload struct {
	Version   int              `json:"v"`
	From      string           `json:"from"`
	Treasures []sharedTreasure `json:"treasures"`
}

// SharedTreasure is a decoded treasure location.
type SharedTreasure struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	SharedBy  string  `json:"sharedBy"`
}

// Encode builds a share code for the given treasures. The code embeds only
// (name, lat, lon): rewards are re-rolled on import so codes can't mint
// specific loot.
func Encode(treasures []models.Treasure, senderName string) (string, error) {
	if len(treasures) == 0 {
		return "", errors.BadRequest("No treasures to share")
	}

	p := payload{
		Version: Version,
		From:    senderName,
	}
	for _, t := range treasures {
		p.Treasures = append(p.Treasures, sharedTreasure{
			Name:      t.Name,
			Latitude:  t.Latitude,
			Longitude: t.Longitude,
		})
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return Prefix + base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a share code, tolerating surrounding text (players paste
// whole messages). Returns the treasures with the sender attached.
func Decode(code string) ([]SharedTreasure, error) {
	clean := strings.TrimSpace(code)

	idx := strings.Index(clean, Prefix)
	if idx < 0 {
		return nil, errors.BadRequest("Invalid share code. Make sure you copied the entire code.")
	}
	encoded := clean[idx+len(Prefix):]
	if nl := strings.IndexAny(encoded, "\n\r \t"); nl >= 0 {
		encoded = encoded[:nl]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.BadRequest("Share code is corrupted")
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.BadRequest("Share code is corrupted")
	}

	if len(p.Treasures) == 0 {
		return nil, errors.BadRequest("No treasures found in the shared data")
	}

	from := p.From
	if from == "" {
		from = "A friend"
	}

	out := make([]SharedTreasure, 0, len(p.Treasures))
	for _, t := range p.Treasures {
		out = append(out, SharedTreasure{
			Name:      t.Name,
			Latitude:  t.Latitude,
			Longitude: t.Longitude,
			SharedBy:  from,
		})
	}
	return out, nil
}
