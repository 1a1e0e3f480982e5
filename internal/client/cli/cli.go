// Package cli implements the campkeeper command line client.
package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/iudanet/campkeeper/internal/client/data"
	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/client/sync"
)

// Cli bundles the services the commands operate on. One invocation works on
// one campaign.
type Cli struct {
	dataService data.Service
	syncService sync.Service
	registry    *storage.Registry
	campaign    string
}

// New creates the command dispatcher.
func New(campaign string, dataService data.Service, syncService sync.Service, registry *storage.Registry) *Cli {
	return &Cli{
		campaign:    campaign,
		dataService: dataService,
		syncService: syncService,
		registry:    registry,
	}
}

// AuthTransport adds the bearer token to every request. It is the
// authenticated fetch the sync client is handed; the engine itself never
// stores credentials.
type AuthTransport struct {
	Token string
	inner *http.Client
}

// NewAuthTransport creates an authenticated HTTP doer.
func NewAuthTransport(token string) *AuthTransport {
	return &AuthTransport{
		Token: token,
		inner: &http.Client{Timeout: 30 * time.Second},
	}
}

// Do implements api.Doer.
func (t *AuthTransport) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.Token)
	return t.inner.Do(req)
}

func PrintUsage() {
	fmt.Println("CampKeeper Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  campkeeper [OPTIONS] COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version            Show version information")
	fmt.Println("  --server URL         Server URL (default: http://localhost:8080)")
	fmt.Println("  --campaign SLUG      Campaign to operate on (default: default)")
	fmt.Println("  --data-dir PATH      Directory for local campaign databases")
	fmt.Println("  --token TOKEN        Access token (or CAMPKEEPER_TOKEN env var)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  note add --title T [--markdown M] [--type TYPE]   Create a note")
	fmt.Println("  note update ID [--title T] [--markdown M]         Edit a note")
	fmt.Println("  note delete ID                                    Delete a note")
	fmt.Println("  note list                                         List notes")
	fmt.Println("  note get ID                                       Show one note")
	fmt.Println("  link add --from ID --to ID --type REL             Create a relationship")
	fmt.Println("  link delete ID                                    Delete a relationship")
	fmt.Println("  link list                                         List relationships")
	fmt.Println("  folder add --name N [--parent ID]                 Create a folder")
	fmt.Println("  folder delete ID                                  Delete a folder")
	fmt.Println("  folder list                                       List folders")
	fmt.Println("  chat new --title T                                Start a chat session")
	fmt.Println("  chat say CHAT_ID MESSAGE                          Append a chat message")
	fmt.Println("  chat log CHAT_ID                                  Show a chat transcript")
	fmt.Println("  sync                                              Run one sync pass now")
	fmt.Println("  watch                                             Keep syncing on the adaptive timer")
	fmt.Println("  status                                            Show pending changes and sync state")
}
