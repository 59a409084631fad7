package parsemode

// Mode is the query parse mode used to compile search keys.
type Mode string

// Parse mode constants.
const (
	// Terms handles every key as its own phrase and adds a cross-field group.
	Terms  Mode = "terms"
	Phrase Mode = "phrase"
	// Edismax embeds the keys into an {!edismax} local params clause.
	Edismax Mode = "edismax"
	// Keys emits bare keys without any field.
	Keys Mode = "keys"
	// Direct passes a raw query string through.
	Direct Mode = "direct"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Terms || m == Phrase || m == Edismax || m == Keys || m == Direct
}

// AllowsFields reports whether the mode may be combined with a field list.
func (m Mode) AllowsFields() bool { return m != Keys }

// RequiresFields reports whether the mode needs a non-empty field list.
func (m Mode) RequiresFields() bool { return m == Edismax || m == Direct }
