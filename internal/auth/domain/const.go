// Package domain defines authentication and authorization domain models.
// Users authenticate with a password for a signed access token and an opaque refresh
// token; authorization is ownership based.
package domain

// Action names an operation a user attempts on a namespace or credential.
type Action string

const (
	// ActionList enumerates resources.
	ActionList Action = "list"

	// ActionRead reads a single resource, including secret fields.
	ActionRead Action = "read"

	// ActionCreate creates a resource.
	ActionCreate Action = "create"

	// ActionUpdate replaces a resource.
	ActionUpdate Action = "update"

	// ActionDelete removes a resource.
	ActionDelete Action = "delete"
)

// GroupUser is the only group carried by access tokens.
const GroupUser = "user"

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}
