package domain

// CategoryFilter holds optional inclusive bounds on beatmap attributes. A nil bound is unset.
type CategoryFilter struct {
	MinLength *float64 `json:"minLength,omitempty"`
	MaxLength *float64 `json:"maxLength,omitempty"`
	MinBPM    *float64 `json:"minBPM,omitempty"`
	MaxBPM    *float64 `json:"maxBPM,omitempty"`
	MinSR     *float64 `json:"minSR,omitempty"`
	MaxSR     *float64 `json:"maxSR,omitempty"`
	MinCS     *float64 `json:"minCS,omitempty"`
	MaxCS     *float64 `json:"maxCS,omitempty"`
}

// IsEmpty reports whether no bound is set
func (f *CategoryFilter) IsEmpty() bool {
	return f == nil || (f.MinLength == nil && f.MaxLength == nil &&
		f.MinBPM == nil && f.MaxBPM == nil &&
		f.MinSR == nil && f.MaxSR == nil &&
		f.MinCS == nil && f.MaxCS == nil)
}

// Category is an award within one cycle year
type Category struct {
	ID             int             `json:"id"`
	Year           int             `json:"year"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           CategoryType    `json:"type"`
	Mode           Mode            `json:"mode"`
	IsRequired     bool            `json:"isRequired"`
	MaxNominations int             `json:"maxNominations"`
	Filter         *CategoryFilter `json:"filter,omitempty"`
}

// GroupKey identifies the set of categories a grand award gates
type GroupKey struct {
	Type CategoryType
	Mode Mode
}

func (c *Category) RequiredGroupKey() GroupKey {
	return GroupKey{Type: c.Type, Mode: c.Mode}
}

// CategoryInfo is the public rendering of a category on the nominating page
type CategoryInfo struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           CategoryType    `json:"type"`
	Mode           Mode            `json:"mode"`
	IsRequired     bool            `json:"isRequired"`
	MaxNominations int             `json:"maxNominations"`
	Filter         *CategoryFilter `json:"filter,omitempty"`
}

func (c *Category) Info() CategoryInfo {
	info := CategoryInfo{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Type:           c.Type,
		Mode:           c.Mode,
		IsRequired:     c.IsRequired,
		MaxNominations: c.MaxNominations,
	}
	if !c.Filter.IsEmpty() {
		info.Filter = c.Filter
	}
	return info
}
