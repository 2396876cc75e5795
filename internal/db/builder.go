package db

// FieldOption tunes a schema field added through IndexBuilder.
type FieldOption func(*IndexField)

// Sortable keeps the field in the sort table so SORTBY can use it.
func Sortable() FieldOption {
	return func(f *IndexField) { f.Sortable = true }
}

// Weight scales a TEXT field's contribution to the relevance score.
// Non-positive values keep the engine default.
func Weight(w float64) FieldOption {
	return func(f *IndexField) {
		if w > 0 {
			f.Weight = w
		}
	}
}

// NoStem indexes a TEXT field verbatim, e.g. file names.
func NoStem() FieldOption {
	return func(f *IndexField) { f.NoStem = true }
}

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a HASH index named name.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, StorageType: StorageHash}}
}

// Prefix limits the index to keys starting with one of prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Language picks the stemmer.
func (b *IndexBuilder) Language(lang string) *IndexBuilder {
	b.def.Language = lang
	return b
}

// Text adds a full-text field.
func (b *IndexBuilder) Text(name string, opts ...FieldOption) *IndexBuilder {
	return b.field(name, IndexFieldText, opts)
}

// Numeric adds a numeric range field.
func (b *IndexBuilder) Numeric(name string, opts ...FieldOption) *IndexBuilder {
	return b.field(name, IndexFieldNumeric, opts)
}

// Tag adds an exact-match tag field.
func (b *IndexBuilder) Tag(name string, opts ...FieldOption) *IndexBuilder {
	return b.field(name, IndexFieldTag, opts)
}

func (b *IndexBuilder) field(name string, typ IndexFieldType, opts []FieldOption) *IndexBuilder {
	f := IndexField{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&f)
	}
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build returns the definition once it passes Validate.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// MustBuild is Build for static schemas; it panics on an invalid definition.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic("db: " + err.Error())
	}
	return def
}
