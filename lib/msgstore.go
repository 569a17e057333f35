package lib

import (
	"context"
	"fmt"
	"time"

	"git.sr.ht/~rjarry/sumview/config"
	"git.sr.ht/~rjarry/sumview/lib/iterator"
	"git.sr.ht/~rjarry/sumview/lib/ledger"
	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/lib/marker"
	libsort "git.sr.ht/~rjarry/sumview/lib/sort"
	"git.sr.ht/~rjarry/sumview/models"
	"git.sr.ht/~rjarry/sumview/worker/types"
	"github.com/dustin/go-humanize"
)

// NodeKey designates a row of the message list. A key is only valid for the
// view it was taken from: every Attach starts a new epoch.
type NodeKey struct {
	Uid   models.UID
	Epoch uint64
}

// Listener receives the state changes of a MessageStore. A nil message means
// the slot was cleared.
type Listener interface {
	SelectionChanged(msg *models.Message)
	DisplayedChanged(msg *models.Message)
	CountsChanged(counts ledger.Counts)
}

type NullListener struct{}

func (NullListener) SelectionChanged(*models.Message) {}
func (NullListener) DisplayedChanged(*models.Message) {}
func (NullListener) CountsChanged(ledger.Counts)      {}

// MessageStore is the state of one folder view: the ordered forest of
// messages, the selected and displayed rows and the pending intents.
// It is not safe for concurrent use.
type MessageStore struct {
	backend types.Store
	cache   types.Cache
	conf    *config.SumviewConfig
	summary *config.SummaryConfig

	folder *models.Folder
	loaded bool

	// messages in store order, the view is derived from it
	messages []*models.Message
	root     *types.Thread
	nodes    map[models.UID]*types.Thread
	epoch    uint64
	threaded bool

	selected  *NodeKey
	displayed *NodeKey

	ledger      *ledger.Ledger
	marker      marker.Marker
	iterFactory iterator.Factory
	listener    Listener

	locked int
}

func NewMessageStore(
	backend types.Store, folder *models.Folder, conf *config.SumviewConfig,
) *MessageStore {
	store := &MessageStore{
		backend:  backend,
		conf:     conf,
		folder:   folder,
		root:     &types.Thread{},
		nodes:    make(map[models.UID]*types.Thread),
		ledger:   ledger.New(),
		listener: NullListener{},
	}
	store.summary = conf.SummaryFor(folder.Path)
	store.threaded = store.summary.Threaded
	store.iterFactory = iterator.NewFactory(store.summary.Reverse)
	store.marker = marker.New(store)
	return store
}

func (store *MessageStore) WithListener(l Listener) *MessageStore {
	if l == nil {
		l = NullListener{}
	}
	store.listener = l
	return store
}

func (store *MessageStore) WithCache(c types.Cache) *MessageStore {
	store.cache = c
	return store
}

func (store *MessageStore) Folder() *models.Folder {
	return store.folder
}

// Settings returns the summary settings in effect for the current folder.
func (store *MessageStore) Settings() *config.SummaryConfig {
	return store.summary
}

func (store *MessageStore) Marker() marker.Marker {
	return store.marker
}

func (store *MessageStore) Lock() {
	store.locked++
}

func (store *MessageStore) Unlock() {
	if store.locked > 0 {
		store.locked--
	}
}

func (store *MessageStore) IsLocked() bool {
	return store.locked > 0
}

func (store *MessageStore) busy(op string) error {
	if store.IsLocked() {
		log.Debugf("%s rejected: %s is locked", op, store.folder)
		return types.ErrBusy
	}
	return nil
}

// Attach replaces the whole view with msgs. Selection and displayed slots are
// cleared.
func (store *MessageStore) Attach(msgs []*models.Message, threaded bool) error {
	if err := store.busy("attach"); err != nil {
		return err
	}
	store.attach(msgs, threaded)
	return nil
}

func (store *MessageStore) attach(msgs []*models.Message, threaded bool) {
	store.messages = make([]*models.Message, 0, len(msgs))
	seen := make(map[models.UID]struct{}, len(msgs))
	for _, msg := range msgs {
		if _, dup := seen[msg.Uid]; dup {
			log.Warnf("%s: duplicate uid %d ignored", store.folder, msg.Uid)
			continue
		}
		seen[msg.Uid] = struct{}{}
		store.messages = append(store.messages, msg)
	}
	hadSelection := store.SelectedMessage() != nil
	hadDisplayed := store.DisplayedMessage() != nil
	store.selected = nil
	store.displayed = nil

	store.epoch++
	store.threaded = threaded
	store.build(nil)
	if !store.summary.ExpandThreads {
		for n := store.root.FirstChild; n != nil; n = n.NextSibling {
			n.Hidden = n.FirstChild != nil
		}
	}
	if hadSelection {
		store.listener.SelectionChanged(nil)
	}
	if hadDisplayed {
		store.listener.DisplayedChanged(nil)
	}
	store.recount()
}

// build computes the forest from the store order. Folded state is carried
// over by uid.
func (store *MessageStore) build(folded map[models.UID]bool) {
	start := time.Now()
	msgs := make([]*models.Message, len(store.messages))
	copy(msgs, store.messages)

	criteria := store.summary.Sort
	if store.summary.Attract() {
		msgs = libsort.AttractBySubject(msgs, store.summary.AttractWindow)
	}
	if store.threaded {
		builder := NewThreadBuilder(
			store.summary.ThreadAlgorithm, store.summary.ThreadBySubject)
		store.root = builder.Build(msgs)
		if types.Active(criteria) {
			libsort.SortThreads(store.root, criteria)
		}
	} else {
		if types.Active(criteria) {
			libsort.Sort(msgs, criteria)
		}
		store.root = Flat(msgs)
	}

	store.nodes = make(map[models.UID]*types.Thread, len(msgs))
	for n := store.root.FirstChild; n != nil; n = n.Next() {
		store.nodes[n.Uid] = n
		n.Hidden = folded[n.Uid]
	}
	log.Debugf("%s: %d messages in view (threaded=%v) in %s",
		store.folder, len(store.nodes), store.threaded, time.Since(start))
}

// rebuild recomputes the view of the same messages. Selection and displayed
// follow the message identity.
func (store *MessageStore) rebuild(op string) error {
	if err := store.busy(op); err != nil {
		return err
	}
	folded := make(map[models.UID]bool)
	for uid, n := range store.nodes {
		if n.Hidden {
			folded[uid] = true
		}
	}
	store.build(folded)
	// keys hold uids, they still resolve when the message is in the view
	if n := store.resolve(store.selected); n != nil {
		store.unfold(n)
	}
	return nil
}

func (store *MessageStore) Threaded() bool {
	return store.threaded
}

func (store *MessageStore) Thread() error {
	return store.setThreaded(true)
}

func (store *MessageStore) Unthread() error {
	return store.setThreaded(false)
}

func (store *MessageStore) setThreaded(threaded bool) error {
	if err := store.busy("thread"); err != nil {
		return err
	}
	if store.threaded == threaded {
		return nil
	}
	store.threaded = threaded
	return store.rebuild("thread")
}

// Sort orders the view by criteria. Subject attraction is suspended while a
// sort is active.
func (store *MessageStore) Sort(criteria []*types.SortCriterion) error {
	if err := store.busy("sort"); err != nil {
		return err
	}
	store.summary.Sort = criteria
	return store.rebuild("sort")
}

func (store *MessageStore) SetAttract(enabled bool) error {
	if err := store.busy("attract"); err != nil {
		return err
	}
	store.summary.AttractBySubject = enabled
	return store.rebuild("attract")
}

// Load lists the folder from the store. Reloading the same folder keeps
// selection, displayed message and pending intents. A first load selects
// the first unread message.
func (store *MessageStore) Load(ctx context.Context) error {
	if err := store.busy("load"); err != nil {
		return err
	}
	store.Lock()
	defer store.Unlock()

	msgs, err := store.backend.ListMessages(ctx, store.folder)
	if err != nil {
		return fmt.Errorf("list %s: %w", store.folder, err)
	}
	for _, msg := range msgs {
		msg.Folder = store.folder
	}
	store.mergeCache(ctx, msgs)

	if !store.loaded {
		store.attach(msgs, store.threaded)
		store.loaded = true
		key, ok := store.FindNext(nil, IsUnread, false)
		if !ok {
			key, ok = store.FindNearest(nil)
		}
		if ok {
			store.Select(key)
		}
		store.writeCache(ctx)
		return nil
	}

	old := make(map[models.UID]*models.Message, len(store.messages))
	for _, msg := range store.messages {
		old[msg.Uid] = msg
	}
	for _, msg := range msgs {
		prev, ok := old[msg.Uid]
		if !ok || prev.MessageId != msg.MessageId || prev.Flags.IsInvalid() {
			continue
		}
		msg.Flags.Perm = msg.Flags.Perm&^sessionFlags | prev.Flags.Perm&sessionFlags
		msg.Flags.Tmp = prev.Flags.Tmp
		msg.ToFolder = prev.ToFolder
	}
	var sel, disp *models.Message
	if n := store.resolve(store.selected); n != nil {
		sel = n.Msg
	}
	if n := store.resolve(store.displayed); n != nil {
		disp = n.Msg
	}
	store.attach(msgs, store.threaded)
	if disp != nil {
		if n := store.same(disp); n != nil {
			key := store.keyOf(n)
			store.setDisplayed(&key)
		}
	}
	if sel != nil {
		if n := store.same(sel); n != nil {
			store.Select(store.keyOf(n))
		}
	}
	store.writeCache(ctx)
	return nil
}

// Open switches the view to another folder. The snapshot of the current
// folder is written and its pending moves and copies are dropped.
func (store *MessageStore) Open(ctx context.Context, folder *models.Folder) error {
	if folder.Same(store.folder) {
		return store.Load(ctx)
	}
	if err := store.busy("open"); err != nil {
		return err
	}
	store.leave(ctx)
	store.folder = folder
	store.summary = store.conf.SummaryFor(folder.Path)
	store.threaded = store.summary.Threaded
	store.iterFactory = iterator.NewFactory(store.summary.Reverse)
	store.loaded = false
	store.marker.ClearVisualMark()
	return store.Load(ctx)
}

// Close ends the session of the current folder. Pending deletes and marks
// are saved to the flag cache, pending moves and copies are dropped.
func (store *MessageStore) Close(ctx context.Context) error {
	if err := store.busy("close"); err != nil {
		return err
	}
	store.leave(ctx)
	return nil
}

func (store *MessageStore) leave(ctx context.Context) {
	if !store.loaded {
		return
	}
	if n := store.ledger.Counts(); n.Moved+n.Copied > 0 {
		log.Infof("leaving %s: %d moves and %d copies discarded",
			store.folder, n.Moved, n.Copied)
	}
	store.writeCache(ctx)
}

// flags a reload or a snapshot keeps, the store does not persist them
const sessionFlags = models.FlagMarked | models.FlagDeleted | models.ColorLabelMask

func (store *MessageStore) mergeCache(ctx context.Context, msgs []*models.Message) {
	if store.cache == nil {
		return
	}
	cached, err := store.cache.ReadCache(ctx, store.folder)
	if err != nil {
		log.Warnf("read cache %s: %v", store.folder, err)
		return
	}
	byUid := make(map[models.UID]*models.Message, len(cached))
	for _, c := range cached {
		byUid[c.Uid] = c
	}
	for _, msg := range msgs {
		c, ok := byUid[msg.Uid]
		if !ok || c.MessageId != msg.MessageId {
			continue
		}
		msg.Flags.Perm = msg.Flags.Perm&^sessionFlags | c.Flags.Perm&sessionFlags
	}
}

func (store *MessageStore) writeCache(ctx context.Context) {
	if store.cache == nil {
		return
	}
	if err := store.cache.WriteCache(ctx, store.folder, store.Messages()); err != nil {
		log.Warnf("write cache %s: %v", store.folder, err)
	}
}

// recount derives the ledger and folder counters from the live messages.
func (store *MessageStore) recount() ledger.Counts {
	msgs := store.Messages()
	counts := store.ledger.Recount(msgs)
	store.folder.Total = len(msgs)
	store.folder.New = 0
	store.folder.Unread = 0
	for _, msg := range msgs {
		if msg.Flags.IsNew() {
			store.folder.New++
		}
		if msg.Flags.IsUnread() {
			store.folder.Unread++
		}
	}
	store.listener.CountsChanged(counts)
	return counts
}

func (store *MessageStore) Counts() ledger.Counts {
	return store.ledger.Counts()
}

// Status returns the pending intents line and the folder counters line.
func (store *MessageStore) Status() (string, string) {
	counts := store.ledger.Counts()
	f := store.folder
	return counts.String(), fmt.Sprintf("%d new, %d unread, %d total (%s)",
		f.New, f.Unread, f.Total, humanize.Bytes(uint64(counts.TotalSize)))
}

func (store *MessageStore) keyOf(n *types.Thread) NodeKey {
	return NodeKey{Uid: n.Uid, Epoch: store.epoch}
}

// Key returns the key of the row holding uid in the current view.
func (store *MessageStore) Key(uid models.UID) NodeKey {
	return NodeKey{Uid: uid, Epoch: store.epoch}
}

// node returns the attached node of key, including invalid ones.
func (store *MessageStore) node(key NodeKey) *types.Thread {
	if key.Epoch != store.epoch {
		return nil
	}
	return store.nodes[key.Uid]
}

// lookup returns the live node of key.
func (store *MessageStore) lookup(key NodeKey) *types.Thread {
	n := store.node(key)
	if n == nil || n.Msg.Flags.IsInvalid() {
		return nil
	}
	return n
}

func (store *MessageStore) resolve(slot *NodeKey) *types.Thread {
	if slot == nil {
		return nil
	}
	return store.lookup(*slot)
}

// same returns the live node holding msg, matched by identity.
func (store *MessageStore) same(msg *models.Message) *types.Thread {
	n := store.nodes[msg.Uid]
	if n == nil || n.Msg.Flags.IsInvalid() || !n.Msg.Same(msg) {
		return nil
	}
	return n
}

// Message returns the live message of key.
func (store *MessageStore) Message(key NodeKey) *models.Message {
	if n := store.lookup(key); n != nil {
		return n.Msg
	}
	return nil
}

// Messages returns the live messages in tree order.
func (store *MessageStore) Messages() []*models.Message {
	msgs := make([]*models.Message, 0, len(store.nodes))
	for n := store.root.FirstChild; n != nil; n = n.Next() {
		if !n.Msg.Flags.IsInvalid() {
			msgs = append(msgs, n.Msg)
		}
	}
	return msgs
}

func (store *MessageStore) Len() int {
	count := 0
	for _, n := range store.nodes {
		if !n.Msg.Flags.IsInvalid() {
			count++
		}
	}
	return count
}

// Depth returns the thread level of key, 0 for a root.
func (store *MessageStore) Depth(key NodeKey) int {
	n := store.lookup(key)
	if n == nil {
		return 0
	}
	depth := 0
	for p := n.Parent; p != nil && p != store.root; p = p.Parent {
		depth++
	}
	return depth
}

// Uids returns the visible rows in display order. Children of folded threads
// are not visible.
func (store *MessageStore) Uids() []models.UID {
	uids := make([]models.UID, 0, len(store.nodes))
	for n := store.root.FirstChild; n != nil; {
		if !n.Msg.Flags.IsInvalid() {
			uids = append(uids, n.Uid)
		}
		if n.Hidden {
			n = skipSubtree(n)
		} else {
			n = n.Next()
		}
	}
	it := store.iterFactory.NewIterator(uids)
	rows := make([]models.UID, 0, len(uids))
	for it.Next() {
		rows = append(rows, it.Value().(models.UID))
	}
	return rows
}

func skipSubtree(t *types.Thread) *types.Thread {
	for n := t; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// SelectedIndex returns the row of the selection in Uids, -1 when unset.
func (store *MessageStore) SelectedIndex() int {
	n := store.resolve(store.selected)
	if n == nil {
		return -1
	}
	for i, uid := range store.Uids() {
		if uid == n.Uid {
			return i
		}
	}
	return -1
}

func (store *MessageStore) Selected() (NodeKey, bool) {
	if n := store.resolve(store.selected); n != nil {
		return store.keyOf(n), true
	}
	return NodeKey{}, false
}

func (store *MessageStore) SelectedMessage() *models.Message {
	if n := store.resolve(store.selected); n != nil {
		return n.Msg
	}
	return nil
}

func (store *MessageStore) Displayed() (NodeKey, bool) {
	if n := store.resolve(store.displayed); n != nil {
		return store.keyOf(n), true
	}
	return NodeKey{}, false
}

func (store *MessageStore) DisplayedMessage() *models.Message {
	if n := store.resolve(store.displayed); n != nil {
		return n.Msg
	}
	return nil
}

func (store *MessageStore) setSelected(key *NodeKey) {
	before := store.SelectedMessage()
	store.selected = key
	if after := store.SelectedMessage(); after != before {
		store.listener.SelectionChanged(after)
	}
	store.marker.UpdateVisualMark()
}

func (store *MessageStore) setDisplayed(key *NodeKey) {
	before := store.DisplayedMessage()
	store.displayed = key
	if after := store.DisplayedMessage(); after != before {
		store.listener.DisplayedChanged(after)
	}
}

// Select moves the selection to key, unfolding its thread. The displayed
// message does not change.
func (store *MessageStore) Select(key NodeKey) bool {
	n := store.lookup(key)
	if n == nil {
		return false
	}
	store.unfold(n)
	store.setSelected(&key)
	return true
}

func (store *MessageStore) SelectByUid(uid models.UID) bool {
	return store.Select(store.Key(uid))
}

// Unselect clears the selection slot.
func (store *MessageStore) Unselect() {
	store.setSelected(nil)
}

// Display selects key, shows it and marks it read.
func (store *MessageStore) Display(key NodeKey) bool {
	if !store.Select(key) {
		return false
	}
	n := store.lookup(key)
	if n.Msg.Flags.IsNew() || n.Msg.Flags.IsUnread() {
		store.listener.CountsChanged(store.ledger.SetRead(n.Msg))
	}
	store.setDisplayed(&key)
	return true
}

// CloseDisplayed clears the displayed slot.
func (store *MessageStore) CloseDisplayed() {
	store.setDisplayed(nil)
}

func (store *MessageStore) unfold(n *types.Thread) {
	for p := n.Parent; p != nil && p != store.root; p = p.Parent {
		p.Hidden = false
	}
}

// ToggleFold folds or unfolds the thread below key. It reports whether the
// row has children.
func (store *MessageStore) ToggleFold(key NodeKey) bool {
	n := store.lookup(key)
	if n == nil || n.FirstChild == nil {
		return false
	}
	n.Hidden = !n.Hidden
	if n.Hidden {
		if sel := store.resolve(store.selected); sel != nil && n.IsAncestorOf(sel) {
			store.setSelected(&key)
		}
	}
	return true
}

// Folded reports whether the children of key are hidden.
func (store *MessageStore) Folded(key NodeKey) bool {
	n := store.lookup(key)
	return n != nil && n.FirstChild != nil && n.Hidden
}

// HasUnreadChildren reports whether a descendant of key is unread.
func (store *MessageStore) HasUnreadChildren(key NodeKey) bool {
	n := store.lookup(key)
	if n == nil || n.FirstChild == nil {
		return false
	}
	end := skipSubtree(n)
	for d := n.FirstChild; d != nil && d != end; d = d.Next() {
		if !d.Msg.Flags.IsInvalid() && d.Msg.Flags.IsUnread() {
			return true
		}
	}
	return false
}
