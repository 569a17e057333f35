package lib

import (
	"fmt"
	"testing"
	"time"

	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type tree struct {
	Uid  models.UID
	Kids []tree
}

func forest(root *types.Thread) []tree {
	var res []tree
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		res = append(res, tree{Uid: n.Uid, Kids: forest(n)})
	}
	return res
}

var inbox = &models.Folder{Path: "INBOX", Name: "INBOX", Kind: models.FolderInbox}

func testMsg(uid int, inReplyTo int, perm models.PermFlag) *models.Message {
	msg := &models.Message{
		Uid:       models.UID(uid),
		Folder:    inbox,
		MessageId: fmt.Sprintf("<%d@test>", uid),
		Subject:   fmt.Sprintf("message %d", uid),
		Date:      time.Date(2023, 1, 1, 0, 0, uid, 0, time.UTC),
		Size:      int64(uid * 10),
		Flags:     models.Flags{Perm: perm},
	}
	if inReplyTo > 0 {
		msg.InReplyTo = fmt.Sprintf("<%d@test>", inReplyTo)
	}
	return msg
}

func TestThreadBuilder_ReplyTo(t *testing.T) {
	msgs := []*models.Message{
		testMsg(3, 1, 0),
		testMsg(1, 0, 0),
		testMsg(2, 0, 0),
		testMsg(4, 3, 0),
		testMsg(5, 1, 0),
		testMsg(6, 42, 0),
	}
	root := NewThreadBuilder(ThreadByReplyTo, false).Build(msgs)
	want := []tree{
		{Uid: 1, Kids: []tree{
			{Uid: 3, Kids: []tree{{Uid: 4}}},
			{Uid: 5},
		}},
		{Uid: 2},
		{Uid: 6},
	}
	if diff := cmp.Diff(want, forest(root)); diff != "" {
		t.Errorf("forest mismatch (-want +got):\n%s", diff)
	}
}

func TestThreadBuilder_References(t *testing.T) {
	m3 := testMsg(3, 0, 0)
	m3.References = []string{"<1@test>", "<2@test>"}
	msgs := []*models.Message{testMsg(1, 0, 0), testMsg(2, 1, 0), m3}
	root := NewThreadBuilder(ThreadByReplyTo, false).Build(msgs)
	want := []tree{{Uid: 1, Kids: []tree{{Uid: 2, Kids: []tree{{Uid: 3}}}}}}
	assert.Empty(t, cmp.Diff(want, forest(root)))
}

func TestThreadBuilder_DuplicateIds(t *testing.T) {
	a := testMsg(1, 0, 0)
	b := testMsg(2, 0, 0)
	b.MessageId = a.MessageId
	reply := testMsg(3, 1, 0)
	root := NewThreadBuilder(ThreadByReplyTo, false).Build(
		[]*models.Message{a, b, reply})
	want := []tree{{Uid: 1, Kids: []tree{{Uid: 3}}}, {Uid: 2}}
	if diff := cmp.Diff(want, forest(root)); diff != "" {
		t.Errorf("forest mismatch (-want +got):\n%s", diff)
	}
}

func TestThreadBuilder_Cycle(t *testing.T) {
	a := testMsg(1, 2, 0)
	b := testMsg(2, 1, 0)
	self := testMsg(3, 3, 0)
	root := NewThreadBuilder(ThreadByReplyTo, false).Build(
		[]*models.Message{a, b, self})
	want := []tree{{Uid: 2, Kids: []tree{{Uid: 1}}}, {Uid: 3}}
	if diff := cmp.Diff(want, forest(root)); diff != "" {
		t.Errorf("forest mismatch (-want +got):\n%s", diff)
	}
}

func TestThreadBuilder_DeepChain(t *testing.T) {
	const n = 50000
	msgs := make([]*models.Message, 0, n)
	for i := 1; i <= n; i++ {
		msgs = append(msgs, testMsg(i, i-1, 0))
	}
	start := time.Now()
	root := NewThreadBuilder(ThreadByReplyTo, false).Build(msgs)
	assert.Less(t, time.Since(start), 5*time.Second)

	depth := 0
	for node := root.FirstChild; node != nil; node = node.FirstChild {
		depth++
		if node.NextSibling != nil {
			t.Fatalf("row %d has a sibling", node.Uid)
		}
	}
	assert.Equal(t, n, depth)
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name    string
		parents []int
		want    []int
	}{
		{"roots", []int{-1, -1}, []int{-1, -1}},
		{"chain", []int{-1, 0, 1, 2}, []int{-1, 0, 1, 2}},
		{"reversed chain", []int{1, 2, 3, -1}, []int{1, 2, 3, -1}},
		{"pair", []int{1, 0}, []int{1, -1}},
		{"loop behind a tail", []int{1, 2, 3, 1}, []int{1, 2, 3, -1}},
		{"self", []int{0, 0}, []int{-1, 0}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			steps := breakCycles(test.parents)
			assert.Equal(t, test.want, test.parents)
			assert.LessOrEqual(t, steps, len(test.parents))
		})
	}

	const n = 50000
	chain := make([]int, n)
	for i := range chain {
		// every node replies to the next one, the last one to the first
		chain[i] = (i + 1) % n
	}
	assert.Equal(t, n, breakCycles(chain))
	assert.Equal(t, -1, chain[n-1])
}

func TestThreadBuilder_RethreadIsomorphic(t *testing.T) {
	msgs := []*models.Message{
		testMsg(7, 2, 0),
		testMsg(1, 0, 0),
		testMsg(2, 1, 0),
		testMsg(3, 0, 0),
		testMsg(4, 3, 0),
		testMsg(5, 2, 0),
	}
	builder := NewThreadBuilder(ThreadByReplyTo, false)
	first := builder.Build(msgs)

	var flat []*models.Message
	for n := first.FirstChild; n != nil; n = n.Next() {
		flat = append(flat, n.Msg)
	}
	unthreaded := Flat(flat)
	for n := unthreaded.FirstChild; n != nil; n = n.NextSibling {
		assert.Nil(t, n.FirstChild)
	}
	second := builder.Build(flat)

	if diff := cmp.Diff(parents(first), parents(second)); diff != "" {
		t.Errorf("parent relation changed (-first +second):\n%s", diff)
	}
}

func parents(root *types.Thread) map[models.UID]models.UID {
	res := make(map[models.UID]models.UID)
	for n := root.FirstChild; n != nil; n = n.Next() {
		if n.Parent != root {
			res[n.Uid] = n.Parent.Uid
		} else {
			res[n.Uid] = 0
		}
	}
	return res
}

func TestThreadBuilder_Jwz(t *testing.T) {
	m4 := testMsg(4, 0, 0)
	// parent 9 is missing, jwz inserts a dummy that must vanish
	m4.References = []string{"<9@test>"}
	m5 := testMsg(5, 0, 0)
	m5.References = []string{"<9@test>"}
	msgs := []*models.Message{
		testMsg(1, 0, 0),
		testMsg(2, 1, 0),
		testMsg(3, 2, 0),
		m4,
		m5,
	}
	root := NewThreadBuilder(ThreadByReferences, false).Build(msgs)

	count := 0
	for n := root.FirstChild; n != nil; n = n.Next() {
		assert.NotNil(t, n.Msg)
		count++
	}
	assert.Equal(t, len(msgs), count)

	got := parents(root)
	assert.Equal(t, models.UID(0), got[1])
	assert.Equal(t, models.UID(1), got[2])
	assert.Equal(t, models.UID(2), got[3])
}

func TestCleanRefs(t *testing.T) {
	refs := cleanRefs("<m>", "<a>", []string{"<a>", "<m>", "<b>", "<a>"})
	assert.Equal(t, []string{"<b>", "<a>"}, refs)
}
