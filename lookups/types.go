package lookups

// since there are no joins in MongoDB, text descriptions of code values are served by the API

// there's no real good solution in GO :-/
// https://www.reddit.com/r/golang/comments/kh305t/restrict_allowed_values_for_strings/
// closed value sets are therefore string types with an explicit Parse and JSON (un)marshalling

// Registry of Lookup/Code Types
const (
	LTreviewType = iota
	LTinteractionKind
	LTinstructorTag
)

// LookupType returns names of the available code types
func LookupType(lt int) string {

	var str = ""

	switch lt {
	case LTreviewType:
		str = "review type"
	case LTinteractionKind:
		str = "interaction kind"
	case LTinstructorTag:
		str = "instructor tag"
	}

	return str
}

// LookupValue is a code value as delivered to the client
type LookupValue struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// LookupList is a named list of code values
type LookupList struct {
	LookupType string        `json:"lookupType"`
	Values     []LookupValue `json:"values"`
}

// All returns every code type with its values (GET /lookups)
func All() []LookupList {

	types := make([]LookupValue, 0, len(reviewTypes))
	for _, v := range reviewTypes {
		types = append(types, LookupValue{Value: string(v), Text: v.Text()})
	}

	kinds := make([]LookupValue, 0, len(interactionKinds))
	for _, v := range interactionKinds {
		kinds = append(kinds, LookupValue{Value: string(v), Text: v.Text()})
	}

	tags := make([]LookupValue, 0, len(instructorTags))
	for _, v := range instructorTags {
		tags = append(tags, LookupValue{Value: string(v), Text: string(v)})
	}

	return []LookupList{
		{LookupType: LookupType(LTreviewType), Values: types},
		{LookupType: LookupType(LTinteractionKind), Values: kinds},
		{LookupType: LookupType(LTinstructorTag), Values: tags},
	}
}
