package brush

// Worldspawn is the classname of the level's root entity.
const Worldspawn = "worldspawn"

// Entity is a classname with key/values and an optional set of brushes.
type Entity struct {
	Classname  string
	Properties map[string]string
	Brushes    []*Brush
	Format     Format
}

// NewEntity returns an entity with an initialized property map.
func NewEntity(classname string, format Format) *Entity {
	return &Entity{
		Classname:  classname,
		Properties: make(map[string]string),
		Format:     format,
	}
}

// Property returns the value of key, or "" when unset.
func (e *Entity) Property(key string) string {
	return e.Properties[key]
}

// SetProperty sets a key/value, creating the map if needed.
func (e *Entity) SetProperty(key, value string) {
	if e.Properties == nil {
		e.Properties = make(map[string]string)
	}
	e.Properties[key] = value
}

// IsWorldspawn reports whether the entity is the level root.
func (e *Entity) IsWorldspawn() bool {
	return e.Classname == Worldspawn
}
