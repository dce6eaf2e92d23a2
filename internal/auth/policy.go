package auth

// Owned is implemented by every resource that belongs to a single user.
type Owned interface {
	OwnerID() string
}

// CanMutate reports whether userID may modify or delete resource.
func CanMutate(resource Owned, userID string) bool {
	if resource == nil || userID == "" {
		return false
	}
	return resource.OwnerID() == userID
}
