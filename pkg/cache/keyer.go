package cache

// Keyer derives cache keys from content hashes and the options that affect
// the cached value.
type Keyer interface {
	// LayoutKey identifies a pipeline result for a given input.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// PreviewKey identifies a rendered preview of a layout.
	PreviewKey(layoutHash string, opts PreviewKeyOpts) string
}

// LayoutKeyOpts are the options folded into a layout key.
type LayoutKeyOpts struct {
	Format  string `json:"format"`
	Version int    `json:"version"` // result encoding version
}

// PreviewKeyOpts are the options folded into a preview key.
type PreviewKeyOpts struct {
	Format string  `json:"format"`
	Binds  bool    `json:"binds"`
	Scale  float64 `json:"scale"`
}

// DefaultKeyer builds "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// PreviewKey implements Keyer.
func (DefaultKeyer) PreviewKey(layoutHash string, opts PreviewKeyOpts) string {
	return hashKey("preview", layoutHash, opts)
}
