package domain

// Field identifies an editable task field.
type Field uint8

// Editable task fields.
const (
	FieldTitle Field = 1 << iota
	FieldDescription
	FieldStatus
	FieldPriority
	FieldDueDate
	FieldAssignee
)

var fieldOrder = []Field{
	FieldTitle,
	FieldDescription,
	FieldStatus,
	FieldPriority,
	FieldDueDate,
	FieldAssignee,
}

// String returns the JSON name of the field.
func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldDescription:
		return "description"
	case FieldStatus:
		return "status"
	case FieldPriority:
		return "priority"
	case FieldDueDate:
		return "due_date"
	case FieldAssignee:
		return "assigned_to_id"
	default:
		return "unknown"
	}
}

// FieldSet is a set of editable fields.
type FieldSet uint8

// AllTaskFields contains every editable field.
var AllTaskFields = NewFieldSet(fieldOrder...)

// NewFieldSet builds a set from fields.
func NewFieldSet(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

// With returns s plus f.
func (s FieldSet) With(f Field) FieldSet {
	return s | FieldSet(f)
}

// Has reports whether f is in s.
func (s FieldSet) Has(f Field) bool {
	return s&FieldSet(f) != 0
}

// IsEmpty reports whether s has no fields.
func (s FieldSet) IsEmpty() bool {
	return s == 0
}

// Covers reports whether every field of other is in s.
func (s FieldSet) Covers(other FieldSet) bool {
	return other&^s == 0
}

// Minus returns the fields of s that are not in other.
func (s FieldSet) Minus(other FieldSet) FieldSet {
	return s &^ other
}

// Names returns the JSON names of the fields in a stable order.
func (s FieldSet) Names() []string {
	names := make([]string, 0, len(fieldOrder))
	for _, f := range fieldOrder {
		if s.Has(f) {
			names = append(names, f.String())
		}
	}
	return names
}
