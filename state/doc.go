// Package state provides a shared key/value store for node logic that needs
// state outside the message path.
//
// Values are stored as-is, so any Go value fits. Reads are type-checked:
// Get[V] returns a TYPE_MISMATCH error when the stored value is not a V.
// Insert is last-writer-wins. Update[V] hands a callback exclusive access to
// one value and writes the result back.
//
// # Usage
//
//	store := state.NewMemoryStore()
//	defer store.Close()
//
//	store.Insert("counter", 0)
//
//	n, err := state.Update(store, "counter", func(n *int) error {
//	    *n++
//	    return nil
//	})
//
//	v, err := state.Get[int](store, "counter")
//
//	// Watch for changes
//	ch, _ := store.Watch("counter*")
//	for kv := range ch {
//	    fmt.Printf("%s %s = %v\n", kv.Operation, kv.Key, kv.Value)
//	}
package state
