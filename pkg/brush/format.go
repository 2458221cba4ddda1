package brush

// Format identifies the source file format an entity was read from.
type Format string

// Supported source formats.
const (
	FormatMAP Format = "map"
	FormatRMF Format = "rmf"
	FormatJMF Format = "jmf"
	FormatOBJ Format = "obj"
	FormatOL  Format = "ol"
)

func (f Format) String() string {
	if f == "" {
		return "unknown"
	}
	return string(f)
}
