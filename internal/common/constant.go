package common

// Keys used in the local cache store.
const (
	CacheKeyEntries = "journal_entries"
	CacheKeyToken   = "token"
	CacheKeyUser    = "user"
)

// AuthHeaderName is the HTTP header carrying the bearer token.
const AuthHeaderName = "Authorization"
