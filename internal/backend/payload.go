package backend

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"expensetracker/cli/internal/models"
	"expensetracker/cli/internal/tokens"
)

// Field names are matched liberally; the backend has shipped both camel and
// snake case, with and without a wrapping object.
var (
	accessPaths  = []string{"accessToken", "access_token", "token", "tokens.accessToken", "tokens.access_token", "data.accessToken", "data.access_token"}
	refreshPaths = []string{"refreshToken", "refresh_token", "tokens.refreshToken", "tokens.refresh_token", "data.refreshToken", "data.refresh_token"}
	userPaths    = []string{"user", "data.user"}
	messagePaths = []string{"message", "error", "error.message"}
)

func firstString(body []byte, paths []string) string {
	for _, p := range paths {
		r := gjson.GetBytes(body, p)
		if r.Type == gjson.String {
			if v := strings.TrimSpace(r.String()); v != "" {
				return v
			}
		}
	}
	return ""
}

// extractTokens pulls the token pair out of a login or refresh response.
func extractTokens(body []byte) tokens.Pair {
	if !gjson.ValidBytes(body) {
		return tokens.Pair{}
	}
	return tokens.Pair{
		AccessToken:  firstString(body, accessPaths),
		RefreshToken: firstString(body, refreshPaths),
	}
}

// extractUser returns the embedded user record, or nil when the response
// has none.
func extractUser(body []byte) *models.User {
	if !gjson.ValidBytes(body) {
		return nil
	}
	for _, p := range userPaths {
		r := gjson.GetBytes(body, p)
		if !r.IsObject() {
			continue
		}
		var u models.User
		if err := json.Unmarshal([]byte(r.Raw), &u); err != nil {
			continue
		}
		if u.Username == "" && u.Email == "" {
			continue
		}
		return &u
	}
	return nil
}

// backendMessage returns the human-readable error the backend put in a
// failure body, or "".
func backendMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	return firstString(body, messagePaths)
}
