package lib

import (
	"time"

	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
	sortthread "github.com/emersion/go-imap-sortthread"
	"github.com/gatherstars-com/jwz"
)

const (
	ThreadByReplyTo    = "reply-to"
	ThreadByReferences = "references"
)

type ThreadBuilder struct {
	algorithm string
	bySubject bool
}

// NewThreadBuilder returns a builder using the given algorithm. The
// reply-to algorithm links a message to the message its In-Reply-To (or
// last References entry) names. The references algorithm runs the full jwz
// threading on the References chain, optionally grouping by subject.
func NewThreadBuilder(algorithm string, bySubject bool) *ThreadBuilder {
	if algorithm != ThreadByReferences {
		algorithm = ThreadByReplyTo
	}
	return &ThreadBuilder{algorithm: algorithm, bySubject: bySubject}
}

// Build returns the forest of msgs attached below a new root node. Roots and
// siblings keep the relative order of msgs.
func (builder *ThreadBuilder) Build(msgs []*models.Message) *types.Thread {
	start := time.Now()
	var root *types.Thread
	if builder.algorithm == ThreadByReferences {
		root = builder.buildJwz(msgs)
	} else {
		root = builder.buildIndex(msgs)
	}
	log.Tracef("%d messages threaded (%s) in %s", len(msgs),
		builder.algorithm, time.Since(start))
	return root
}

// Flat returns msgs as a list of childless roots.
func Flat(msgs []*models.Message) *types.Thread {
	root := &types.Thread{}
	var last *types.Thread
	for _, msg := range msgs {
		node := &types.Thread{Uid: msg.Uid, Msg: msg}
		root.InsertAfter(node, last)
		last = node
	}
	return root
}

// buildIndex resolves every reply reference through a message-id index. When
// several messages share a message-id, the first one owns it.
func (builder *ThreadBuilder) buildIndex(msgs []*models.Message) *types.Thread {
	nodes := make([]*types.Thread, len(msgs))
	byId := make(map[string]int, len(msgs))
	for i, msg := range msgs {
		nodes[i] = &types.Thread{Uid: msg.Uid, Msg: msg}
		if msg.MessageId == "" {
			continue
		}
		if _, dup := byId[msg.MessageId]; !dup {
			byId[msg.MessageId] = i
		}
	}
	parents := make([]int, len(msgs))
	for i, msg := range msgs {
		parents[i] = -1
		if p, ok := byId[msg.ReplyTo()]; ok && p != i {
			parents[i] = p
		}
	}
	steps := breakCycles(parents)
	log.Tracef("reply-to threading of %d messages: %d links", len(msgs), steps)

	root := &types.Thread{}
	tails := make(map[*types.Thread]*types.Thread, len(msgs))
	for i, node := range nodes {
		parent := root
		if parents[i] >= 0 {
			parent = nodes[parents[i]]
		}
		parent.InsertAfter(node, tails[parent])
		tails[parent] = node
	}
	return root
}

// breakCycles drops the parent links that close a loop. Each node is walked
// once, the number of links followed is returned.
func breakCycles(parents []int) int {
	const (
		unseen = iota
		active
		done
	)
	state := make([]uint8, len(parents))
	steps := 0
	var path []int
	for i := range parents {
		path = path[:0]
		for j := i; j >= 0 && state[j] == unseen; {
			state[j] = active
			path = append(path, j)
			next := parents[j]
			if next >= 0 && state[next] == active {
				parents[j] = -1
				next = -1
			}
			j = next
			steps++
		}
		for _, k := range path {
			state[k] = done
		}
	}
	return steps
}

func (builder *ThreadBuilder) buildJwz(msgs []*models.Message) *types.Thread {
	order := make(map[models.UID]int, len(msgs))
	threadables := make([]jwz.Threadable, 0, len(msgs))
	for i, msg := range msgs {
		order[msg.Uid] = i
		threadables = append(threadables, newThreadable(msg, builder.bySubject))
	}
	bigger := func(left, right *types.Thread) bool {
		if left == nil || right == nil {
			return false
		}
		return order[left.Uid] > order[right.Uid]
	}

	root := &types.Thread{}
	threader := jwz.NewThreader()
	structure, err := threader.ThreadSlice(threadables)
	if err != nil || structure == nil {
		if err != nil {
			log.Errorf("failed slicing threads: %v", err)
		}
		return Flat(msgs)
	}
	builder.buildTree(structure, root, bigger)
	return root
}

// buildTree recursively translates the jwz threads structure into our threads.
// Dummy containers are dropped and their children take their place.
func (builder *ThreadBuilder) buildTree(c jwz.Threadable, parent *types.Thread,
	bigger func(l, r *types.Thread) bool,
) {
	for node := c; node != nil; node = node.GetNext() {
		t, ok := node.(*threadable)
		if !ok || t.IsDummy() || t.msg == nil {
			builder.buildTree(node.GetChild(), parent, bigger)
			continue
		}
		thread := &types.Thread{Uid: t.msg.Uid, Msg: t.msg}
		parent.InsertCmp(thread, bigger)
		builder.buildTree(node.GetChild(), thread, bigger)
	}
}

// threadable implements the jwz.threadable interface which is required for the
// jwz threading algorithm
type threadable struct {
	msg       *models.Message
	messageId string
	next      jwz.Threadable
	parent    jwz.Threadable
	child     jwz.Threadable
	dummy     bool
	bySubject bool
}

func newThreadable(msg *models.Message, bySubject bool) *threadable {
	msgid := msg.MessageId
	if msgid == "" {
		// jwz needs an id, make one that nobody can reference
		msgid = "<" + msg.String() + "@sumview.invalid>"
	}
	return &threadable{
		msg:       msg,
		messageId: msgid,
		bySubject: bySubject,
	}
}

func (t *threadable) MessageThreadID() string {
	return t.messageId
}

func (t *threadable) MessageThreadReferences() []string {
	if t.IsDummy() || t.msg == nil {
		return nil
	}
	irp := t.msg.InReplyTo
	refs := t.msg.References
	if len(refs) == 0 {
		if irp == "" {
			return nil
		}
		refs = []string{irp}
	}
	return cleanRefs(t.MessageThreadID(), irp, refs)
}

// cleanRefs cleans up the references headers for threading
// 1) message-id should not be part of the references
// 2) no message-id should occur twice (avoid circularities)
// 3) in-reply-to header should not be at the beginning
func cleanRefs(m, irp string, refs []string) []string {
	considered := make(map[string]any)
	cleanRefs := make([]string, 0, len(refs))
	for _, r := range refs {
		if _, seen := considered[r]; r != m && !seen {
			considered[r] = nil
			cleanRefs = append(cleanRefs, r)
		}
	}
	if irp != "" && len(cleanRefs) > 0 {
		if cleanRefs[0] == irp {
			cleanRefs = append(cleanRefs[1:], irp)
		}
	}
	return cleanRefs
}

func (t *threadable) Subject() string {
	if !t.bySubject || t.msg == nil {
		return ""
	}
	return t.msg.Subject
}

func (t *threadable) SimplifiedSubject() string {
	if t.bySubject {
		subject, _ := sortthread.GetBaseSubject(t.Subject())
		return subject
	}
	return ""
}

func (t *threadable) SubjectIsReply() bool {
	if t.bySubject {
		_, replyOrForward := sortthread.GetBaseSubject(t.Subject())
		return replyOrForward
	}
	return false
}

func (t *threadable) SetNext(next jwz.Threadable) {
	t.next = next
}

func (t *threadable) SetChild(kid jwz.Threadable) {
	t.child = kid
	if kid != nil {
		kid.SetParent(t)
	}
}

func (t *threadable) SetParent(parent jwz.Threadable) {
	t.parent = parent
}

func (t *threadable) GetNext() jwz.Threadable {
	return t.next
}

func (t *threadable) GetChild() jwz.Threadable {
	return t.child
}

func (t *threadable) GetParent() jwz.Threadable {
	return t.parent
}

func (t *threadable) GetDate() time.Time {
	if t.IsDummy() {
		if t.GetChild() != nil {
			return t.GetChild().GetDate()
		}
		return time.Unix(0, 0)
	}
	if t.msg == nil {
		return time.Unix(0, 0)
	}
	return t.msg.Date
}

func (t *threadable) MakeDummy(forID string) jwz.Threadable {
	return &threadable{
		messageId: forID,
		dummy:     true,
	}
}

func (t *threadable) IsDummy() bool {
	return t.dummy
}
