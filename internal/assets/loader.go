package assets

// AssetLoader loads stylesheets and template sets by name.
type AssetLoader interface {
	// LoadStyle returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet returns ErrTemplateSetNotFound if no template of the
	// set exists and ErrIncompleteTemplateSet if only some do.
	LoadTemplateSet(name string) (*TemplateSet, error)
}
