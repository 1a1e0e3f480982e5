package handlers

import "github.com/iudanet/campkeeper/internal/models"

// EdgeToWire translates a stored edge document into the snake_case relation
// fields the pull endpoint serves. The inverse mapping lives in the client.
func EdgeToWire(doc models.Doc) models.Doc {
	attributes, ok := doc["attributes"].(map[string]any)
	if !ok || attributes == nil {
		attributes = models.Doc{}
	}

	return models.Doc{
		"id":         doc["id"],
		"from_id":    doc["fromId"],
		"to_id":      doc["toId"],
		"from_title": doc["fromTitle"],
		"to_title":   doc["toTitle"],
		"relType":    doc["relType"],
		"createdAt":  doc["createdAt"],
		"updatedAt":  doc["updatedAt"],
		"attributes": attributes,
	}
}
