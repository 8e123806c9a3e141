package portal

import "strings"

// IsAuthenticatedPage reports whether finalURL is the logout page, which the
// portal only serves to clients with an active session.
func IsAuthenticatedPage(finalURL string) bool {
	segments := strings.Split(finalURL, "/")
	return segments[len(segments)-1] == "logout.php"
}
