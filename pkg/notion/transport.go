package notion

import "context"

// Endpoint names the family of remote endpoints an object is served from.
type Endpoint string

const (
	EndpointPages     Endpoint = "pages"
	EndpointDatabases Endpoint = "databases"
	EndpointBlocks    Endpoint = "blocks"
)

// Transport defines the remote calls the tree and the button rely on.
// Authentication and rate limiting are the implementation's concern.
type Transport interface {
	// RetrieveObject fetches the full object with the given id.
	RetrieveObject(ctx context.Context, endpoint Endpoint, id string) (Object, error)
	// ListChildren fetches one page of the object's children starting at cursor.
	// An empty cursor requests the first page.
	ListChildren(ctx context.Context, endpoint Endpoint, id, cursor string) (*ChildrenPage, error)
	// UpdateObject pushes patch to the remote and returns the updated object.
	UpdateObject(ctx context.Context, endpoint Endpoint, id string, patch Object) (Object, error)
	// Search returns every page or database whose title matches query.
	Search(ctx context.Context, query string) ([]Object, error)
}

// EndpointForObject maps an "object" field value to its endpoint.
func EndpointForObject(object string) (Endpoint, bool) {
	switch object {
	case "page":
		return EndpointPages, true
	case "database":
		return EndpointDatabases, true
	case "block":
		return EndpointBlocks, true
	}
	return "", false
}
