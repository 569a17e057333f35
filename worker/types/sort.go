package types

type SortField int

const (
	SortNone SortField = iota
	SortNumber
	SortSize
	SortDate
	SortFrom
	SortTo
	SortSubject
	SortLabel
	SortMark
	SortUnread
	SortMime
)

var sortFieldNames = map[SortField]string{
	SortNone:    "none",
	SortNumber:  "number",
	SortSize:    "size",
	SortDate:    "date",
	SortFrom:    "from",
	SortTo:      "to",
	SortSubject: "subject",
	SortLabel:   "label",
	SortMark:    "mark",
	SortUnread:  "unread",
	SortMime:    "mime",
}

func (f SortField) String() string {
	if name, ok := sortFieldNames[f]; ok {
		return name
	}
	return "unknown"
}

type SortCriterion struct {
	Field   SortField
	Reverse bool
}

// Active reports whether the criteria impose an explicit order.
func Active(criteria []*SortCriterion) bool {
	for _, c := range criteria {
		if c.Field != SortNone {
			return true
		}
	}
	return false
}
