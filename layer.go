package treehouse

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Layer identifies a node in the layer forest. Ids are stable across edits:
// a layer keeps its id for as long as it is reused, even as its ranges and
// parse tree change underneath it.
type Layer uint32

// Injection records where a child layer's content lives inside its parent,
// so that a later reconciliation pass can tell whether a previously found
// injection still matches a freshly discovered one.
type Injection struct {
	Range tree_sitter.Range
	Layer Layer
}

// LayerFlags track what happened to a layer during the most recent
// RunInjectionQuery pass on its parent.
type LayerFlags struct {
	// Touched is set the first time this pass's reconciliation assigns a
	// match to the layer; ParseLayer is only invoked once per pass, on the
	// transition from false to true.
	Touched bool
	// Modified is set when the layer's ranges changed compared to its
	// previous parse, so its tree needs reparsing even though the layer
	// itself was reused.
	Modified bool
	// Moved is set by mapInjections when an edit shifted the layer's range
	// without altering its content (a pure offset change).
	Moved bool
	// Reused is set once a layer has been matched against a prior
	// injection in this pass, so a second match in the same pass cannot
	// also claim it.
	Reused bool
}

// LayerData is everything tree-house tracks about one layer of the forest.
type LayerData struct {
	Language  string
	ParseTree *tree_sitter.Tree
	Ranges    []tree_sitter.Range
	Injections []Injection
	Parent    *Layer
	Flags     LayerFlags
}

// Tree returns the layer's current parse tree, or nil if it has not been
// parsed yet.
func (d *LayerData) Tree() *tree_sitter.Tree {
	return d.ParseTree
}

// layerStore is an arena of LayerData keyed by a stable Layer id. Freed
// slots are reused so the backing slice doesn't grow without bound across
// a long incremental-editing session.
type layerStore struct {
	slots []layerSlot
	free  []Layer
}

// layerSlot holds the layer's data behind a pointer so that growing slots
// (on insert) never invalidates a *LayerData a caller is already holding,
// e.g. across an onTouch callback that inserts other layers.
type layerSlot struct {
	data *LayerData
}

func newLayerStore() *layerStore {
	return &layerStore{}
}

func (s *layerStore) insert(data LayerData) Layer {
	d := &data
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[id] = layerSlot{data: d}
		return id
	}
	id := Layer(len(s.slots))
	s.slots = append(s.slots, layerSlot{data: d})
	return id
}

func (s *layerStore) remove(id Layer) {
	if int(id) >= len(s.slots) || s.slots[id].data == nil {
		return
	}
	s.slots[id] = layerSlot{}
	s.free = append(s.free, id)
}

func (s *layerStore) get(id Layer) (*LayerData, bool) {
	if int(id) >= len(s.slots) || s.slots[id].data == nil {
		return nil, false
	}
	return s.slots[id].data, true
}

func (s *layerStore) mustGet(id Layer) *LayerData {
	data, ok := s.get(id)
	if !ok {
		panic("treehouse: invalid layer id")
	}
	return data
}

// Layers iterates every live layer id in ascending order, root first.
func (s *layerStore) Layers() []Layer {
	ids := make([]Layer, 0, len(s.slots))
	for i, slot := range s.slots {
		if slot.data != nil {
			ids = append(ids, Layer(i))
		}
	}
	return ids
}
