package sync

import "github.com/iudanet/campkeeper/internal/models"

// EdgeFromWire translates one edge document from the server's snake_case
// relation fields into the local camelCase schema. The mapping is fixed:
//
//	from_id    -> fromId
//	to_id      -> toId
//	from_title -> fromTitle
//	to_title   -> toTitle
//
// id, relType, createdAt and updatedAt pass through unchanged; a missing
// attributes object becomes an empty one.
func EdgeFromWire(doc models.Doc) models.Doc {
	attributes, ok := doc["attributes"].(map[string]any)
	if !ok || attributes == nil {
		attributes = models.Doc{}
	}

	return models.Doc{
		"id":         doc["id"],
		"fromId":     doc["from_id"],
		"toId":       doc["to_id"],
		"fromTitle":  doc["from_title"],
		"toTitle":    doc["to_title"],
		"relType":    doc["relType"],
		"createdAt":  doc["createdAt"],
		"updatedAt":  doc["updatedAt"],
		"attributes": attributes,
	}
}
