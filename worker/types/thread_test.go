package types

import (
	"fmt"
	"strings"
	"testing"

	"git.sr.ht/~rjarry/sumview/models"
	"github.com/stretchr/testify/assert"
)

func genFakeTree() *Thread {
	tree := &Thread{
		Uid: 0,
	}
	var prevChild *Thread
	for i := 1; i < 3; i++ {
		child := &Thread{
			Uid:         models.UID(i * 10),
			Parent:      tree,
			PrevSibling: prevChild,
		}
		if prevChild != nil {
			prevChild.NextSibling = child
		} else if tree.FirstChild == nil {
			tree.FirstChild = child
		} else {
			panic("unreachable")
		}
		prevChild = child
		var prevSecond *Thread
		for j := 1; j < 3; j++ {
			second := &Thread{
				Uid:         child.Uid + models.UID(j),
				Parent:      child,
				PrevSibling: prevSecond,
			}
			if prevSecond != nil {
				prevSecond.NextSibling = second
			} else if child.FirstChild == nil {
				child.FirstChild = second
			} else {
				panic("unreachable")
			}
			prevSecond = second
			var prevThird *Thread
			limit := 3
			if j == 2 {
				limit = 8
			}
			for k := 1; k < limit; k++ {
				third := &Thread{
					Uid:         second.Uid*10 + models.UID(k),
					Parent:      second,
					PrevSibling: prevThird,
				}
				if prevThird != nil {
					prevThird.NextSibling = third
				} else if second.FirstChild == nil {
					second.FirstChild = third
				} else {
					panic("unreachable")
				}
				prevThird = third
			}
		}
	}
	return tree
}

func TestNewWalk(t *testing.T) {
	tree := genFakeTree()
	var prefix []string
	lastLevel := 0
	tree.Walk(func(th *Thread, lvl int, e error) error {
		if e != nil {
			t.Errorf("walk error: %v", e)
		}
		if lvl > lastLevel && lvl > 1 {
			// we actually just descended... so figure out what connector we need
			// level 1 is flush to the root, so we avoid the indentation there
			if th.Parent.NextSibling != nil {
				prefix = append(prefix, "│  ")
			} else {
				prefix = append(prefix, "   ")
			}
		} else if lvl < lastLevel {
			// ascended, need to trim the prefix layers
			diff := lastLevel - lvl
			prefix = prefix[:len(prefix)-diff]
		}

		var arrow string
		if th.Parent != nil {
			if th.NextSibling != nil {
				arrow = "├─>"
			} else {
				arrow = "└─>"
			}
		}

		t.Logf("%s%s%s", strings.Join(prefix, ""), arrow, th)

		lastLevel = lvl
		return nil
	})
}

func uidSeq(tree *Thread) string {
	var seq []string
	tree.Walk(func(t *Thread, _ int, _ error) error {
		seq = append(seq, fmt.Sprintf("%d", t.Uid))
		return nil
	})
	return strings.Join(seq, ".")
}

func TestThread_AddChild(t *testing.T) {
	tests := []struct {
		name string
		seq  []int
		want string
	}{
		{
			name: "ascending",
			seq:  []int{1, 2, 3, 4, 5, 6},
			want: "0.1.2.3.4.5.6",
		},
		{
			name: "descending",
			seq:  []int{6, 5, 4, 3, 2, 1},
			want: "0.6.5.4.3.2.1",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := &Thread{Uid: 0}
			for _, i := range test.seq {
				tree.AddChild(&Thread{Uid: models.UID(i)})
			}
			if got := uidSeq(tree); got != test.want {
				t.Errorf("got: %s, but wanted: %s", got,
					test.want)
			}
		})
	}
}

func TestThread_OrderedInsert(t *testing.T) {
	tests := []struct {
		name string
		seq  []int
		want string
	}{
		{
			name: "ascending",
			seq:  []int{1, 2, 3, 4, 5, 6},
			want: "0.1.2.3.4.5.6",
		},
		{
			name: "descending",
			seq:  []int{6, 5, 4, 3, 2, 1},
			want: "0.1.2.3.4.5.6",
		},
		{
			name: "mixed",
			seq:  []int{2, 1, 6, 3, 4, 5},
			want: "0.1.2.3.4.5.6",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := &Thread{Uid: 0}
			for _, i := range test.seq {
				tree.OrderedInsert(&Thread{Uid: models.UID(i)})
			}
			if got := uidSeq(tree); got != test.want {
				t.Errorf("got: %s, but wanted: %s", got,
					test.want)
			}
		})
	}
}

func TestThread_InsertCmd(t *testing.T) {
	tests := []struct {
		name string
		seq  []int
		want string
	}{
		{
			name: "ascending",
			seq:  []int{1, 2, 3, 4, 5, 6},
			want: "0.6.4.2.1.3.5",
		},
		{
			name: "descending",
			seq:  []int{6, 5, 4, 3, 2, 1},
			want: "0.6.4.2.1.3.5",
		},
		{
			name: "mixed",
			seq:  []int{2, 1, 6, 3, 4, 5},
			want: "0.6.4.2.1.3.5",
		},
	}
	sortMap := map[models.UID]int{
		6: 1,
		4: 2,
		2: 3,
		1: 4,
		3: 5,
		5: 6,
	}

	// bigger compares the new child with the next node and returns true if
	// the child node is bigger and false otherwise.
	bigger := func(newNode, nextChild *Thread) bool {
		return sortMap[newNode.Uid] > sortMap[nextChild.Uid]
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := &Thread{Uid: 0}
			for _, i := range test.seq {
				tree.InsertCmp(&Thread{Uid: models.UID(i)}, bigger)
			}
			if got := uidSeq(tree); got != test.want {
				t.Errorf("got: %s, but wanted: %s", got,
					test.want)
			}
		})
	}
}

func buildChain(uids ...int) (*Thread, []*Thread) {
	root := &Thread{}
	var nodes []*Thread
	for _, uid := range uids {
		n := &Thread{Uid: models.UID(uid)}
		root.AddChild(n)
		nodes = append(nodes, n)
	}
	return root, nodes
}

func preorder(root *Thread) string {
	var seq []string
	for n := root.FirstChild; n != nil; n = n.Next() {
		seq = append(seq, fmt.Sprintf("%d", n.Uid))
	}
	return strings.Join(seq, ".")
}

func reversePreorder(root *Thread) string {
	last := root
	for last.FirstChild != nil {
		last = last.LastChild()
	}
	var seq []string
	for n := last; n != nil && n != root; n = n.Prev() {
		seq = append(seq, fmt.Sprintf("%d", n.Uid))
	}
	return strings.Join(seq, ".")
}

func TestThread_NextPrev(t *testing.T) {
	root, nodes := buildChain(1, 2, 3)
	nodes[0].AddChild(&Thread{Uid: 11})
	nodes[0].FirstChild.AddChild(&Thread{Uid: 111})
	nodes[0].AddChild(&Thread{Uid: 12})
	nodes[2].AddChild(&Thread{Uid: 31})

	assert.Equal(t, "1.11.111.12.2.3.31", preorder(root))
	assert.Equal(t, "31.3.2.12.111.11.1", reversePreorder(root))
	assert.Nil(t, nodes[2].FirstChild.Next())
	assert.Equal(t, root, nodes[0].Prev())
}

func TestThread_Unlink(t *testing.T) {
	tests := []struct {
		name   string
		remove int
		want   string
	}{
		{name: "head", remove: 0, want: "2.3"},
		{name: "middle", remove: 1, want: "1.3"},
		{name: "tail", remove: 2, want: "1.2"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			root, nodes := buildChain(1, 2, 3)
			nodes[test.remove].Unlink()
			if got := preorder(root); got != test.want {
				t.Errorf("got: %s, but wanted: %s", got, test.want)
			}
			assert.Nil(t, nodes[test.remove].Parent)
			assert.Equal(t, test.want, reverseToForward(reversePreorder(root)))
		})
	}
}

func reverseToForward(s string) string {
	parts := strings.Split(s, ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func TestThread_PromoteChildren(t *testing.T) {
	root, nodes := buildChain(1, 2, 3)
	nodes[1].AddChild(&Thread{Uid: 21})
	nodes[1].AddChild(&Thread{Uid: 22})
	nodes[1].FirstChild.AddChild(&Thread{Uid: 211})

	nodes[1].PromoteChildren()
	assert.Nil(t, nodes[1].FirstChild)
	assert.Equal(t, "1.2.21.211.22.3", preorder(root))
	for _, n := range root.Children() {
		assert.Equal(t, root, n.Parent)
	}

	nodes[1].Unlink()
	assert.Equal(t, "1.21.211.22.3", preorder(root))
	assert.Equal(t, "3.22.211.21.1", reversePreorder(root))
}

func TestThread_IsAncestorOf(t *testing.T) {
	root, nodes := buildChain(1, 2)
	child := &Thread{Uid: 11}
	nodes[0].AddChild(child)
	assert.True(t, nodes[0].IsAncestorOf(child))
	assert.True(t, root.IsAncestorOf(child))
	assert.False(t, nodes[1].IsAncestorOf(child))
	assert.False(t, child.IsAncestorOf(child))
}
