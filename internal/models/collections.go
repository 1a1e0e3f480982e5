package models

// Local collection (bucket) names.
const (
	CollectionNodes        = "nodes"
	CollectionEdges        = "edges"
	CollectionFolders      = "folders"
	CollectionChats        = "chats"
	CollectionChatMessages = "chatMessages"
)

// Doc is an open JSON document as stored in a collection. The sync engine is
// agnostic to payload shape; only the reserved keys "id", "updatedAt" and
// "createdAt" are interpreted.
type Doc = map[string]any

// Collection describes one synchronized collection: its local bucket name,
// its path segment on the wire and the field used as the pull cursor.
type Collection struct {
	Name        string
	Path        string
	CursorField string
}

// Collections returns all synchronized collections in the fixed pull order.
// Chat messages are append-only, so their cursor is createdAt.
func Collections() []Collection {
	return []Collection{
		{Name: CollectionNodes, Path: "nodes", CursorField: "updatedAt"},
		{Name: CollectionEdges, Path: "edges", CursorField: "updatedAt"},
		{Name: CollectionFolders, Path: "folders", CursorField: "updatedAt"},
		{Name: CollectionChats, Path: "chats", CursorField: "updatedAt"},
		{Name: CollectionChatMessages, Path: "chat-messages", CursorField: "createdAt"},
	}
}

// CollectionByPath resolves a wire path segment to its collection.
func CollectionByPath(path string) (Collection, bool) {
	for _, c := range Collections() {
		if c.Path == path {
			return c, true
		}
	}
	return Collection{}, false
}
