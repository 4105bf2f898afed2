package model

// UserData is the authenticated workbench identity. Records carry the name
// as their created_by attribution.
type UserData struct {
	Name string `json:"name"`
}
