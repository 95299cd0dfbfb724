package kvproto

import (
	"strconv"
	"strings"
)

// AllUsersKey is the single well-known roster key holding the
// comma-terminated list of all user keys in the store.
const AllUsersKey = "all_users"

// PostsSuffix is appended to a user key to name that user's post-list
// roster key, e.g. "user_17" -> "user_17_posts".
const PostsSuffix = "_posts"

// UserKey formats the record key for user id.
func UserKey(id int) string { return "user_" + strconv.Itoa(id) }

// PostKey formats the record key for post id.
func PostKey(id int) string { return "post_" + strconv.Itoa(id) }

// PostListKey formats the roster key holding userKey's post-key list.
func PostListKey(userKey string) string { return userKey + PostsSuffix }

// IsPostKey reports whether key names a post record ("post_<N>").
func IsPostKey(key string) bool {
	return strings.HasPrefix(key, "post_")
}

// IsListKey reports whether key names a roster/list key: all_users or any
// key ending in "_posts". Per spec.md section 4.3, Append treats any key
// ending in 's' as a list key; we apply that check literally.
func IsListKey(key string) bool {
	return strings.HasSuffix(key, "s")
}

// ExtractID yields the trailing integer of a key like "user_17" or
// "post_42". For a post-list roster key ("<user>_posts") it returns the
// user's id, since that key's ownership tracks the user's shard.
//
// Returns false if no trailing integer can be found.
func ExtractID(key string) (int, bool) {
	k := strings.TrimSuffix(key, PostsSuffix)

	i := len(k)
	for i > 0 && k[i-1] >= '0' && k[i-1] <= '9' {
		i--
	}
	if i == len(k) {
		return 0, false
	}
	digits := k[i:]
	// Require the digits to be preceded by an underscore, so "user_17"
	// extracts 17 but a bare numeric-suffixed key without a separator
	// (which never occurs in this naming scheme) wouldn't silently match.
	if i == 0 || k[i-1] != '_' {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
