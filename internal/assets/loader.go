package assets

// PrintStyle is the name of the stylesheet applied to every document.
const PrintStyle = "print"

// Loader loads CSS by name (without the .css extension).
// Implementations return ErrStyleNotFound for unknown names and
// ErrInvalidAssetName for unsafe ones.
type Loader interface {
	LoadStyle(name string) (string, error)
}
