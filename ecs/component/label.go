package component

// Label names an entity for lookups, logs, and viewer snapshots.
type Label struct {
	Value string
}

var LabelComponent = NewComponent[Label]()
