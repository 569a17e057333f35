package sort

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = 24 * time.Hour

var epoch = time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)

func msg(uid int, subject string, age time.Duration) *models.Message {
	return &models.Message{
		Uid:     models.UID(uid),
		Subject: subject,
		Date:    epoch.Add(age),
	}
}

func uids(msgs []*models.Message) string {
	var s []string
	for _, m := range msgs {
		s = append(s, fmt.Sprintf("%d", m.Uid))
	}
	return strings.Join(s, ".")
}

func TestGetSortCriteria(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []*types.SortCriterion
		err  bool
	}{
		{
			name: "single",
			args: []string{"date"},
			want: []*types.SortCriterion{{Field: types.SortDate}},
		},
		{
			name: "reversed secondary",
			args: []string{"subject", "-r", "size"},
			want: []*types.SortCriterion{
				{Field: types.SortSubject},
				{Field: types.SortSize, Reverse: true},
			},
		},
		{
			name: "dangling reverse",
			args: []string{"date", "-r"},
			err:  true,
		},
		{
			name: "unknown",
			args: []string{"arrival"},
			err:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := GetSortCriteria(test.args)
			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestLessString(t *testing.T) {
	assert.True(t, LessString("", "a"))
	assert.False(t, LessString("a", ""))
	assert.False(t, LessString("", ""))
	assert.True(t, LessString("alice", "Bob"))
	assert.False(t, LessString("BOB", "bob"))
	assert.False(t, LessString("bob", "BOB"))
}

func TestSort(t *testing.T) {
	a := &models.Message{Uid: 1, From: "bob", Size: 30, Date: epoch}
	b := &models.Message{Uid: 2, From: "", Size: 10, Date: epoch.Add(day)}
	c := &models.Message{Uid: 3, From: "Alice", Size: 20, Date: epoch.Add(-day)}
	d := &models.Message{Uid: 4, From: "alice", Size: 20, Date: epoch}
	d.Flags.Set(models.FlagUnread)
	b.Flags.Set(models.FlagUnread)

	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"from"}, want: "2.3.4.1"},
		{args: []string{"-r", "from"}, want: "1.3.4.2"},
		{args: []string{"size"}, want: "2.3.4.1"},
		{args: []string{"size", "-r", "number"}, want: "2.4.3.1"},
		{args: []string{"date", "number"}, want: "3.1.4.2"},
		{args: []string{"unread"}, want: "1.3.2.4"},
		{args: []string{"number"}, want: "1.2.3.4"},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, " "), func(t *testing.T) {
			criteria, err := GetSortCriteria(test.args)
			require.NoError(t, err)
			msgs := []*models.Message{a, b, c, d}
			Sort(msgs, criteria)
			if got := uids(msgs); got != test.want {
				t.Errorf("got: %s, but wanted: %s", got, test.want)
			}
		})
	}
}

func TestSort_SubjectIgnoresPrefixes(t *testing.T) {
	msgs := []*models.Message{
		msg(1, "Re: zebra", 0),
		msg(2, "apple", 0),
		msg(3, "", 0),
		msg(4, "Fwd: Mango", 0),
	}
	Sort(msgs, []*types.SortCriterion{{Field: types.SortSubject}})
	assert.Equal(t, "3.2.4.1", uids(msgs))
}

func TestSortThreads(t *testing.T) {
	root := &types.Thread{}
	nodes := make(map[int]*types.Thread)
	add := func(parent *types.Thread, uid int, size int64) {
		n := &types.Thread{Uid: models.UID(uid), Msg: &models.Message{Uid: models.UID(uid), Size: size}}
		parent.AddChild(n)
		nodes[uid] = n
	}
	add(root, 1, 30)
	add(root, 2, 10)
	add(nodes[1], 11, 5)
	add(nodes[1], 12, 1)
	add(root, 3, 20)

	SortThreads(root, []*types.SortCriterion{{Field: types.SortSize}})

	var seq []string
	for n := root.FirstChild; n != nil; n = n.Next() {
		seq = append(seq, fmt.Sprintf("%d", n.Uid))
	}
	assert.Equal(t, "2.3.1.12.11", strings.Join(seq, "."))
	assert.Nil(t, nodes[2].PrevSibling)
	assert.Equal(t, nodes[3], nodes[1].PrevSibling)
}

func TestSubjectKey(t *testing.T) {
	assert.Equal(t, "sale", SubjectKey("Re: Sale"))
	assert.Equal(t, "sale", SubjectKey("SALE"))
	assert.Equal(t, "big sale", SubjectKey("Fwd:  Big   Sale "))
	assert.Equal(t, "", SubjectKey(""))
}

func TestAttractBySubject(t *testing.T) {
	tests := []struct {
		name string
		msgs []*models.Message
		want string
	}{
		{
			name: "contiguous cluster stays",
			msgs: []*models.Message{
				msg(1, "Re: Sale", 0),
				msg(2, "Sale", day),
				msg(3, "Re: Sale", 2*day),
			},
			want: "1.2.3",
		},
		{
			name: "later reply is spliced after its subject",
			msgs: []*models.Message{
				msg(1, "Sale", 0),
				msg(2, "Lunch", day),
				msg(3, "Re: Sale", 2*day),
				msg(4, "Re: Lunch", 3*day),
			},
			want: "1.3.2.4",
		},
		{
			name: "attaches to the latest holder",
			msgs: []*models.Message{
				msg(1, "Sale", 0),
				msg(2, "Other", 0),
				msg(3, "Re: Sale", day),
				msg(4, "More", 0),
				msg(5, "Re: Sale", 2*day),
			},
			want: "1.3.5.2.4",
		},
		{
			name: "31 days apart is left alone",
			msgs: []*models.Message{
				msg(1, "Sale", 0),
				msg(2, "Other", 0),
				msg(3, "Re: Sale", 31*day),
			},
			want: "1.2.3",
		},
		{
			name: "exactly 30 days is attracted",
			msgs: []*models.Message{
				msg(1, "Sale", 0),
				msg(2, "Other", 0),
				msg(3, "Re: Sale", 30*day),
			},
			want: "1.3.2",
		},
		{
			name: "no subject never moves",
			msgs: []*models.Message{
				msg(1, "", 0),
				msg(2, "Other", 0),
				msg(3, "", 0),
			},
			want: "1.2.3",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := AttractBySubject(test.msgs, DefaultAttractWindow)
			if s := uids(got); s != test.want {
				t.Errorf("got: %s, but wanted: %s", s, test.want)
			}
		})
	}
}

func TestSortBy(t *testing.T) {
	toSort := []models.UID{3, 1, 2}
	SortBy(toSort, []models.UID{2, 9, 3, 1})
	assert.Equal(t, []models.UID{2, 3, 1}, toSort)
}
