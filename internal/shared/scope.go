package shared

// Scope identifies the tenant boundary of a request. Every repository
// call takes it explicitly so queries can never leak across workspaces.
type Scope struct {
	WorkspaceID int64
	UserID      int64
	Level       int
}

// Permission levels per workspace member.
const (
	LevelViewer = 1
	LevelEditor = 2
	LevelOwner  = 3
)

// CanEdit reports whether the member may mutate workspace data.
func (s Scope) CanEdit() bool {
	return s.Level >= LevelEditor
}

// CanAdminister reports whether the member may manage the workspace itself.
func (s Scope) CanAdminister() bool {
	return s.Level >= LevelOwner
}
