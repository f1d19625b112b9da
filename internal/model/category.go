package model

// Category groups tasks by area (shopping, todo, etc.). Categories come
// from configuration; each one is bound to a text channel by name.
type Category struct {
	Key     string
	Label   string
	Channel string
}
