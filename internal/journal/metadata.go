package journal

// DefaultProjectName is used when metadata is absent or names no project.
const DefaultProjectName = "Untitled Project"

// Metadata describes the project a timeline belongs to.
type Metadata struct {
	ProjectName     string `json:"projectName"`
	Initialized     string `json:"initialized,omitempty"`
	Problem         string `json:"problem"`
	Goals           string `json:"goals"`
	SuccessCriteria string `json:"successCriteria"`
}

// NameOrDefault returns the project name, or DefaultProjectName when m is nil
// or its name is empty.
func (m *Metadata) NameOrDefault() string {
	if m == nil || m.ProjectName == "" {
		return DefaultProjectName
	}
	return m.ProjectName
}
