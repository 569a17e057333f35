package sort

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

func GetSortCriteria(args []string) ([]*types.SortCriterion, error) {
	var sortCriteria []*types.SortCriterion
	reverse := false
	for _, arg := range args {
		if arg == "-r" {
			reverse = true
			continue
		}
		field, err := ParseSortField(arg)
		if err != nil {
			return nil, err
		}
		sortCriteria = append(sortCriteria, &types.SortCriterion{
			Field:   field,
			Reverse: reverse,
		})
		reverse = false
	}
	if reverse {
		return nil, errors.New("Expected argument to reverse")
	}
	return sortCriteria, nil
}

func ParseSortField(arg string) (types.SortField, error) {
	switch strings.ToLower(arg) {
	case "none":
		return types.SortNone, nil
	case "number", "uid":
		return types.SortNumber, nil
	case "size":
		return types.SortSize, nil
	case "date":
		return types.SortDate, nil
	case "from":
		return types.SortFrom, nil
	case "to":
		return types.SortTo, nil
	case "subject":
		return types.SortSubject, nil
	case "label", "color":
		return types.SortLabel, nil
	case "mark":
		return types.SortMark, nil
	case "unread":
		return types.SortUnread, nil
	case "mime":
		return types.SortMime, nil
	default:
		return types.SortNone, fmt.Errorf("%v is not a valid sort criterion", arg)
	}
}

// Sort orders msgs in place. Criteria are applied from the last to the first
// with a stable sort, so the first criterion is the primary key.
func Sort(msgs []*models.Message, criteria []*types.SortCriterion) {
	for i := len(criteria) - 1; i >= 0; i-- {
		criterion := criteria[i]
		switch criterion.Field {
		case types.SortNumber:
			sortSlice(criterion, msgs, func(i, j int) bool {
				return msgs[i].Uid < msgs[j].Uid
			})
		case types.SortSize:
			sortSlice(criterion, msgs, func(i, j int) bool {
				return msgs[i].Size < msgs[j].Size
			})
		case types.SortDate:
			sortSlice(criterion, msgs, func(i, j int) bool {
				return msgs[i].Date.Before(msgs[j].Date)
			})
		case types.SortFrom:
			sortStrings(msgs, criterion, func(m *models.Message) string {
				return m.From
			})
		case types.SortTo:
			sortStrings(msgs, criterion, func(m *models.Message) string {
				return m.To
			})
		case types.SortSubject:
			sortStrings(msgs, criterion, func(m *models.Message) string {
				return BaseSubject(m.Subject)
			})
		case types.SortLabel:
			sortSlice(criterion, msgs, func(i, j int) bool {
				return msgs[i].Flags.ColorLabel() < msgs[j].Flags.ColorLabel()
			})
		case types.SortMark:
			sortFlags(msgs, criterion, models.FlagMarked)
		case types.SortUnread:
			sortFlags(msgs, criterion, models.FlagUnread)
		case types.SortMime:
			sortFlags(msgs, criterion, models.FlagMime)
		}
	}
}

// LessString compares two optional strings without case. An empty string
// sorts before a non-empty one and two empty strings are equal.
func LessString(a, b string) bool {
	switch {
	case a == "":
		return b != ""
	case b == "":
		return false
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

func sortFlags(msgs []*models.Message, criterion *types.SortCriterion,
	testFlag models.PermFlag,
) {
	slice := make([]*boolStore, 0, len(msgs))
	for _, msg := range msgs {
		slice = append(slice, &boolStore{
			Value: msg.Flags.Has(testFlag),
			Msg:   msg,
		})
	}
	sortSlice(criterion, slice, func(i, j int) bool {
		valI, valJ := slice[i].Value, slice[j].Value
		return !valI && valJ
	})
	for i := 0; i < len(msgs); i++ {
		msgs[i] = slice[i].Msg
	}
}

func sortStrings(msgs []*models.Message, criterion *types.SortCriterion,
	getValue func(*models.Message) string,
) {
	slice := make([]*lexiStore, 0, len(msgs))
	for _, msg := range msgs {
		slice = append(slice, &lexiStore{
			Value: getValue(msg),
			Msg:   msg,
		})
	}
	sortSlice(criterion, slice, func(i, j int) bool {
		return LessString(slice[i].Value, slice[j].Value)
	})
	for i := 0; i < len(msgs); i++ {
		msgs[i] = slice[i].Msg
	}
}

type lexiStore struct {
	Value string
	Msg   *models.Message
}

type boolStore struct {
	Value bool
	Msg   *models.Message
}

func sortSlice(criterion *types.SortCriterion, slice interface{}, less func(i, j int) bool) {
	if criterion.Reverse {
		sort.SliceStable(slice, func(i, j int) bool {
			return less(j, i)
		})
	} else {
		sort.SliceStable(slice, less)
	}
}

// Sorts toSort by sortBy so that toSort becomes a permutation following the
// order of sortBy.
// toSort should be a subset of sortBy
func SortBy(toSort []models.UID, sortBy []models.UID) {
	// build a map from sortBy
	uidMap := make(map[models.UID]int)
	for i, uid := range sortBy {
		uidMap[uid] = i
	}
	// sortslice of toSort with less function of indexing the map sortBy
	sort.Slice(toSort, func(i, j int) bool {
		return uidMap[toSort[i]] < uidMap[toSort[j]]
	})
}
