package utils

import "github.com/google/uuid"

// NewID returns a random UUID string, used to name event stream subscribers.
func NewID() string {
	return uuid.NewString()
}

// UUIDv5 generates a deterministic UUID v5 from the given name using the URL
// namespace. The daemon names its instance after the backend URL with it.
func UUIDv5(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
