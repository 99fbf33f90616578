package ports

import "context"

// Well-known durable storage keys.
const (
	KeyCredential         = "token"
	KeyIdentity           = "user"
	KeyAdminNotifications = "admin_notifications"
	editRequestKeyPrefix  = "profile_edit_request_"
)

// EditRequestKey returns the storage key holding a user's edit request.
func EditRequestKey(userID string) string {
	return editRequestKeyPrefix + userID
}

// Storage is durable client-side key/value storage. Put and Remove apply all
// given keys together: either every key is written (removed) or none is.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
