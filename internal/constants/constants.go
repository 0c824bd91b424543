package constants

// ContextKeyUserID is the context key under which middleware stores the
// authenticated user's ID.
const ContextKeyUserID = "user_id"

// Pagination limits
const (
	MinPage         = 1
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 20
)

// Search limits
const (
	MinSearchLength   = 2
	MaxSearchLength   = 255
	SearchResultLimit = 50
)

// Task field limits
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 2000
)

// Auth limits
const (
	MinPasswordLength = 8
)
