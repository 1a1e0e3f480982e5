package models

import (
	"encoding/json"
	"fmt"
)

// Note is a campaign note. Markdown is the note body; Attributes carries
// type-specific fields the engine does not interpret.
type Note struct {
	Attributes Doc    `json:"attributes,omitempty"`
	ID         string `json:"id"`
	OwnerID    string `json:"ownerId"`
	CampaignID string `json:"campaignId"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title"`
	Markdown   string `json:"markdown,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// Edge is a typed relationship between two notes.
type Edge struct {
	Attributes Doc    `json:"attributes,omitempty"`
	ID         string `json:"id"`
	OwnerID    string `json:"ownerId"`
	CampaignID string `json:"campaignId"`
	FromID     string `json:"fromId"`
	ToID       string `json:"toId"`
	FromTitle  string `json:"fromTitle,omitempty"`
	ToTitle    string `json:"toTitle,omitempty"`
	RelType    string `json:"relType"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// Folder is a node of the folder tree.
type Folder struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ParentID       string   `json:"parentId,omitempty"`
	CampaignID     string   `json:"campaignId"`
	OwnerID        string   `json:"ownerId"`
	NoteIDs        []string `json:"noteIds"`
	ChildFolderIDs []string `json:"childFolderIds"`
	Position       int      `json:"position"`
	CreatedAt      int64    `json:"createdAt"`
	UpdatedAt      int64    `json:"updatedAt"`
}

// ChatSession is one AI chat conversation.
type ChatSession struct {
	ID            string `json:"id"`
	CampaignID    string `json:"campaignId"`
	OwnerID       string `json:"ownerId"`
	Title         string `json:"title"`
	ContextNodeID string `json:"contextNodeId,omitempty"`
	MessageCount  int    `json:"messageCount"`
	CreatedAt     int64  `json:"createdAt"`
	UpdatedAt     int64  `json:"updatedAt"`
}

// ChatMessage is one message of a chat session. Messages are append-only.
type ChatMessage struct {
	Metadata   Doc    `json:"metadata,omitempty"`
	ID         string `json:"id"`
	ChatID     string `json:"chatId"`
	CampaignID string `json:"campaignId"`
	OwnerID    string `json:"ownerId"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"createdAt"`
}

// ToDoc converts a typed entity into the open document form used by the
// local store and the wire protocol.
func ToDoc(v any) (Doc, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity into document: %w", err)
	}

	return doc, nil
}
