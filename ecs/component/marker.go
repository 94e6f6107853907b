package component

// Marker is a short-lived debug cross drawn at its transform.
type Marker struct {
	Size float64
}

var MarkerComponent = NewComponent[Marker]()
