package render

// Template describes one document template offered to users.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

var templates = []Template{
	{ID: "team-setup", Name: "Team Setup", Description: "Configure your team members and their roles", Category: "setup"},
	{ID: "feature-planning", Name: "Feature Planning", Description: "Define features and acceptance criteria", Category: "planning"},
	{ID: "sprint-planning", Name: "Sprint Planning", Description: "Plan your sprint with task breakdown", Category: "planning"},
	{ID: "raci-matrix", Name: "RACI Matrix", Description: "Define responsibilities using RACI framework", Category: "documentation"},
	{ID: "adr", Name: "Architecture Decision Record", Description: "Document architectural decisions", Category: "documentation"},
}

// Templates returns the document template catalog in display order.
func Templates() []Template {
	return append([]Template(nil), templates...)
}
