package models

// Validate checks title and slug constraints.
func (g *Group) Validate() error {
	return validate.Struct(g)
}
