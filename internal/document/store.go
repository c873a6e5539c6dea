package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"

	"proposal-cli/internal/fee"
	"proposal-cli/internal/ids"
	"proposal-cli/internal/model"
)

var (
	ErrKindMismatch = errors.New("content does not match block kind")
	ErrIDCollision  = errors.New("block id already exists")
	ErrInvalidPatch = errors.New("invalid content patch")
)

// Store is the ordered block collection of one document.
//
// byID and order always hold the same id set; order has no duplicates and is
// the only source of a block's position. Operations addressed to an unknown id
// are silent no-ops.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*model.Block
	order []string

	lmu       sync.Mutex
	nextSub   int
	listeners map[int]func()
}

func NewStore() *Store {
	return &Store{
		byID:      map[string]*model.Block{},
		order:     []string{},
		listeners: map[int]func(){},
	}
}

// Subscribe registers fn to run after every mutation that changed the store.
// The returned func removes the listener.
func (s *Store) Subscribe(fn func()) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.lmu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type addConfig struct {
	index *int
}

type AddBlockOption func(*addConfig)

// AtIndex inserts at i, clamped to [0, Len()]. Without it AddBlock appends.
func AtIndex(i int) AddBlockOption {
	return func(c *addConfig) { c.index = &i }
}

// AddBlock inserts nb and returns its id. A missing id is generated; an id that
// is already present leaves the store untouched and returns ErrIDCollision.
func (s *Store) AddBlock(nb model.NewBlock, opts ...AddBlockOption) (string, error) {
	var cfg addConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	b, err := prepare(nb)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	err = s.addLocked(b, func() int {
		if cfg.index != nil {
			return *cfg.index
		}
		return len(s.order)
	})
	s.mu.Unlock()
	if err != nil {
		return b.ID, err
	}

	s.notify()
	return b.ID, nil
}

// InsertAfter inserts nb right after targetID. An empty or unknown target
// prepends; the two cases are not distinguished here.
func (s *Store) InsertAfter(targetID string, nb model.NewBlock) (string, error) {
	b, err := prepare(nb)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	err = s.addLocked(b, func() int {
		if targetID == "" {
			return 0
		}
		return indexOf(s.order, targetID) + 1
	})
	s.mu.Unlock()
	if err != nil {
		return b.ID, err
	}

	s.notify()
	return b.ID, nil
}

// addLocked inserts b at pos(), clamped to [0, len(order)]. pos runs under the
// same lock as the insert so the target cannot move in between.
func (s *Store) addLocked(b *model.Block, pos func() int) error {
	if _, exists := s.byID[b.ID]; exists {
		return fmt.Errorf("%w: %s", ErrIDCollision, b.ID)
	}
	at := clamp(pos(), 0, len(s.order))
	s.byID[b.ID] = b
	s.order = insertAt(s.order, at, b.ID)
	return nil
}

// UpdateContent replaces the content of id with fn(previous). fn receives a
// copy and runs without the store lock, so it may read the store. The result
// must still match the block's kind. If the block is removed while fn runs the
// update is dropped.
func (s *Store) UpdateContent(id string, fn func(model.Content) model.Content) error {
	kind, cur, ok := s.contentCopy(id)
	if !ok {
		return nil
	}
	next := fn(cur)
	if !model.Matches(kind, next) {
		return fmt.Errorf("%w: %s block %s", ErrKindMismatch, kind, id)
	}
	if !s.commitContent(id, kind, next) {
		return nil
	}
	s.notify()
	return nil
}

// MutateContent runs fn against a deep copy of the block's content and commits
// the draft only when fn returns nil. Like UpdateContent, fn runs without the
// store lock and the last commit wins.
func (s *Store) MutateContent(id string, fn func(draft model.Content) error) error {
	kind, draft, ok := s.contentCopy(id)
	if !ok {
		return nil
	}
	if err := fn(draft); err != nil {
		return err
	}
	if !s.commitContent(id, kind, draft) {
		return nil
	}
	s.notify()
	return nil
}

func (s *Store) contentCopy(id string) (model.Kind, model.Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return "", nil, false
	}
	return b.Kind, cloneContent(b.Content), true
}

// commitContent stores c if id still exists with the same kind.
func (s *Store) commitContent(id string, kind model.Kind, c model.Content) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.Kind != kind {
		return false
	}
	b.Content = c
	return true
}

// Mutate is MutateContent for callers that know the concrete content type.
func Mutate[T model.Content](s *Store, id string, fn func(T) error) error {
	return s.MutateContent(id, func(draft model.Content) error {
		typed, ok := draft.(T)
		if !ok {
			return fmt.Errorf("%w: block %s holds %T", ErrKindMismatch, id, draft)
		}
		return fn(typed)
	})
}

// PatchContent shallow-merges patch into the block's content. Keys outside the
// kind's schema, or values of the wrong shape, reject the whole patch.
func (s *Store) PatchContent(id string, patch map[string]any) error {
	s.mu.Lock()
	b, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	next, err := mergePatch(b.Kind, b.Content, patch)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	b.Content = next
	s.mu.Unlock()

	s.notify()
	return nil
}

func mergePatch(kind model.Kind, cur model.Content, patch map[string]any) (model.Content, error) {
	raw, err := json.Marshal(cur)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range patch {
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPatch, k, err)
		}
		fields[k] = enc
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	next, err := model.DecodeContent(kind, merged, true)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %s", ErrInvalidPatch, kind, strings.TrimPrefix(err.Error(), "json: "))
	}
	return checkPatched(next, patch)
}

// checkPatched applies the rules JSON decoding cannot express. A patched fee
// structure goes through the same migration as `fees structure`.
func checkPatched(c model.Content, patch map[string]any) (model.Content, error) {
	switch t := c.(type) {
	case *model.FeeSummary:
		if t.Options == nil {
			t.Options = []model.FeeOption{}
		}
		for i := range t.Options {
			if t.Options[i].Items == nil {
				t.Options[i].Items = []model.FeeLineItem{}
			}
		}
		_, structurePatched := patch["structure"]
		if t.Structure == "" && !structurePatched {
			t.Structure = model.StructureSingle
		}
		st, err := model.ParseFeeStructure(string(t.Structure))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
		}
		if structurePatched {
			migrated := fee.MigrateStructure(*t, st)
			return &migrated, nil
		}
		t.Structure = st
		if st == model.StructurePackages && selectedCount(t.Options) > 1 {
			return nil, fmt.Errorf("%w: packages allow at most one selected option", ErrInvalidPatch)
		}
	case *model.ImageText:
		switch t.ImagePosition {
		case "", "left", "right":
		default:
			return nil, fmt.Errorf("%w: imagePosition %q (expected left|right)", ErrInvalidPatch, t.ImagePosition)
		}
	case *model.Files:
		if t.Files == nil {
			t.Files = []model.FileAttachment{}
		}
	}
	return c, nil
}

func selectedCount(opts []model.FeeOption) int {
	n := 0
	for _, o := range opts {
		if o.IsSelected() {
			n++
		}
	}
	return n
}

// UpdateStyle shallow-merges partial into the block's style.
func (s *Store) UpdateStyle(id string, partial model.Style) error {
	s.mu.Lock()
	b, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	var cur model.Style
	if b.Style != nil {
		cur = *b.Style
	}
	merged := cur.Merge(partial)
	b.Style = &merged
	s.mu.Unlock()

	s.notify()
	return nil
}

// MoveBlock moves id to toIndex, clamped to [0, Len()-1].
func (s *Store) MoveBlock(id string, toIndex int) error {
	s.mu.Lock()
	cur := indexOf(s.order, id)
	if cur < 0 {
		s.mu.Unlock()
		return nil
	}
	target := clamp(toIndex, 0, len(s.order)-1)
	if cur == target {
		s.mu.Unlock()
		return nil
	}
	s.order = append(s.order[:cur], s.order[cur+1:]...)
	s.order = insertAt(s.order, target, id)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) RemoveBlock(id string) error {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.byID, id)
	if i := indexOf(s.order, id); i >= 0 {
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// ReplaceAll swaps the whole collection for blocks, keeping their order.
// Later duplicates of an id are dropped and blocks without an id get one.
// It returns the number of blocks dropped.
func (s *Store) ReplaceAll(blocks []model.Block) (int, error) {
	byID := make(map[string]*model.Block, len(blocks))
	order := make([]string, 0, len(blocks))
	dropped := 0
	for _, in := range blocks {
		b, err := prepare(model.NewBlock{ID: in.ID, Kind: in.Kind, Content: in.Content, Style: in.Style})
		if err != nil {
			return 0, err
		}
		if _, dup := byID[b.ID]; dup {
			dropped++
			continue
		}
		byID[b.ID] = b
		order = append(order, b.ID)
	}

	s.mu.Lock()
	s.byID = byID
	s.order = order
	s.mu.Unlock()

	s.notify()
	return dropped, nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.byID = map[string]*model.Block{}
	s.order = []string{}
	s.mu.Unlock()

	s.notify()
}

// Ordered materialises the blocks in display order with Position set to the
// index. The returned blocks are copies.
func (s *Store) Ordered() []model.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Block, 0, len(s.order))
	for i, id := range s.order {
		b := copyBlock(s.byID[id])
		b.Position = i
		out = append(out, b)
	}
	return out
}

// Get returns a copy of the block with its current position.
func (s *Store) Get(id string) (model.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return model.Block{}, false
	}
	out := copyBlock(b)
	out.Position = indexOf(s.order, id)
	return out, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) Order() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *Store) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.order, id)
}

// ResolveID accepts a full id or a unique prefix of one.
func (s *Store) ResolveID(ref string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byID[ref]; ok {
		return ref, true
	}
	if ref == "" {
		return "", false
	}
	match := ""
	for _, id := range s.order {
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", false
			}
			match = id
		}
	}
	return match, match != ""
}

func prepare(nb model.NewBlock) (*model.Block, error) {
	if _, err := model.ContentFor(nb.Kind); err != nil {
		return nil, err
	}
	content := nb.Content
	if content == nil {
		content, _ = model.ContentFor(nb.Kind)
	}
	if !model.Matches(nb.Kind, content) {
		return nil, fmt.Errorf("%w: %s got %T", ErrKindMismatch, nb.Kind, content)
	}
	id := strings.TrimSpace(nb.ID)
	if id == "" {
		id = ids.New("blk")
	}
	b := &model.Block{ID: id, Kind: nb.Kind, Content: cloneContent(content)}
	if nb.Style != nil {
		st := *nb.Style
		b.Style = &st
	}
	return b, nil
}

func copyBlock(b *model.Block) model.Block {
	out := *b
	out.Content = cloneContent(b.Content)
	if b.Style != nil {
		st := *b.Style
		out.Style = &st
	}
	return out
}

func cloneContent(c model.Content) model.Content {
	if c == nil {
		return nil
	}
	return deepcopy.Copy(c).(model.Content)
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func insertAt(order []string, at int, id string) []string {
	order = append(order, "")
	copy(order[at+1:], order[at:])
	order[at] = id
	return order
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
