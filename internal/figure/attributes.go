package figure

// AttributeKey is a typed handle on a named figure attribute with a default.
type AttributeKey[T any] struct {
	name string
	def  T
}

func NewAttributeKey[T any](name string, def T) AttributeKey[T] {
	return AttributeKey[T]{name: name, def: def}
}

func (k AttributeKey[T]) Name() string { return k.name }
func (k AttributeKey[T]) Default() T   { return k.def }

// Get returns the attribute of f, or the default when it is unset or holds a
// value of another type.
func (k AttributeKey[T]) Get(f Figure) T {
	v, ok := f.Attribute(k.name)
	if !ok {
		return k.def
	}
	t, ok := v.(T)
	if !ok {
		return k.def
	}
	return t
}

func (k AttributeKey[T]) Set(f Figure, v T) {
	f.SetAttribute(k.name, v)
}

// Standard attributes. Colors are CSS color strings; "none" disables a fill
// or stroke.
var (
	FillColor    = NewAttributeKey("fillColor", "#ffffff")
	StrokeColor  = NewAttributeKey("strokeColor", "#000000")
	StrokeWidth  = NewAttributeKey("strokeWidth", 1.0)
	Opacity      = NewAttributeKey("opacity", 1.0)
	FontFamily   = NewAttributeKey("fontFamily", "sans-serif")
	FontSize     = NewAttributeKey("fontSize", 12.0)
	TextColor    = NewAttributeKey("textColor", "#000000")
	TextContent  = NewAttributeKey("text", "")
	CornerRadius = NewAttributeKey("cornerRadius", 0.0)
	ArrowStart   = NewAttributeKey("arrowStart", false)
	ArrowEnd     = NewAttributeKey("arrowEnd", false)
	AssetID      = NewAttributeKey("assetId", "")
)

// NoColor disables painting of a fill or stroke.
const NoColor = "none"
