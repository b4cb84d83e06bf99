package team

import "regexp"

var githubURLPattern = regexp.MustCompile(`github\.com/([a-zA-Z0-9_-]+)/([a-zA-Z0-9_-]+)(\.git)?`)

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"repo"`
}

// FullName returns "owner/repo".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// ParseRepositoryURL extracts owner and repository name from any string
// containing "github.com/<owner>/<repo>". The scheme, a ".git" suffix and
// trailing path segments are ignored.
func ParseRepositoryURL(url string) (Repository, bool) {
	m := githubURLPattern.FindStringSubmatch(url)
	if m == nil {
		return Repository{}, false
	}
	return Repository{Owner: m[1], Name: m[2]}, true
}
