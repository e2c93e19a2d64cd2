package img2mosaic

// Stats counts what happened while choosing tiles for a run.
type Stats struct {
	// Cells is the number of cells placed.
	Cells int
	// Queries is the number of index lookups issued.
	Queries int
	// SpatialRejects counts candidates that repeated a nearby tile.
	SpatialRejects int
	// CapDiscards counts candidates dropped for reaching the usage cap.
	CapDiscards int
	// SoftViolations counts cells accepted while still breaking a
	// spatial constraint.
	SoftViolations int
	// Fallbacks counts cells resolved after the retry budget ran out.
	Fallbacks int
}
