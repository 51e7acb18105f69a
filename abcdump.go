package abcdump

// LibraryExtractor locates the compiled library inside an archive and
// returns its raw bytes. The decoder only ever sees SWF or ABC bytes.
type LibraryExtractor interface {
	ExtractLibrary(data []byte) ([]byte, error)
}

// Projection selects which text outputs a caller wants.
type Projection string

const (
	ProjectionStub Projection = "stub"
	ProjectionIL   Projection = "il"
	ProjectionBoth Projection = "both"
)

// Stub reports whether the interface stub is selected.
func (p Projection) Stub() bool { return p == ProjectionStub || p == ProjectionBoth || p == "" }

// IL reports whether the IL dump is selected.
func (p Projection) IL() bool { return p == ProjectionIL || p == ProjectionBoth || p == "" }

// Valid reports whether p names a known projection.
func (p Projection) Valid() bool {
	switch p {
	case ProjectionStub, ProjectionIL, ProjectionBoth:
		return true
	}
	return false
}
