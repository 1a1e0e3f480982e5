package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/campkeeper/internal/models"
)

func TestEdgeFromWire(t *testing.T) {
	wire := models.Doc{
		"id":         "e1",
		"from_id":    "n1",
		"to_id":      "n2",
		"from_title": "Strahd",
		"to_title":   "Barovia",
		"relType":    "RULES",
		"createdAt":  float64(1000),
		"updatedAt":  float64(2000),
		"attributes": map[string]any{"strength": "absolute"},
	}

	local := EdgeFromWire(wire)

	assert.Equal(t, "e1", local["id"])
	assert.Equal(t, "n1", local["fromId"])
	assert.Equal(t, "n2", local["toId"])
	assert.Equal(t, "Strahd", local["fromTitle"])
	assert.Equal(t, "Barovia", local["toTitle"])
	assert.Equal(t, "RULES", local["relType"])
	assert.Equal(t, float64(1000), local["createdAt"])
	assert.Equal(t, float64(2000), local["updatedAt"])
	assert.Equal(t, map[string]any{"strength": "absolute"}, local["attributes"])

	// Snake case keys do not leak into the local document
	assert.NotContains(t, local, "from_id")
	assert.NotContains(t, local, "to_id")
}

func TestEdgeFromWire_MissingAttributes(t *testing.T) {
	local := EdgeFromWire(models.Doc{
		"id":      "e1",
		"from_id": "n1",
		"to_id":   "n2",
		"relType": "KNOWS",
	})

	assert.Equal(t, models.Doc{}, local["attributes"])
}
