package receipt

import (
	"fmt"
	"log/slog"
	"sync"
)

// ViewState describes where the list view is in its lifecycle.
type ViewState int

const (
	// ViewIdle means the view has not been activated yet.
	ViewIdle ViewState = iota
	// ViewLoading means a load is in progress.
	ViewLoading
	// ViewPopulated means the last load returned at least one receipt.
	ViewPopulated
	// ViewEmpty means the last load returned no receipts.
	ViewEmpty
)

func (s ViewState) String() string {
	switch s {
	case ViewIdle:
		return "idle"
	case ViewLoading:
		return "loading"
	case ViewPopulated:
		return "populated"
	case ViewEmpty:
		return "empty"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// Confirmer asks the user to confirm a destructive operation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// ListView keeps a local view of the receipt list synchronized with the
// store. It loads once on activation and reloads wholesale on every
// notifier signal received while active; there is no diffing. Load
// failures are logged and leave the prior view state displayed.
type ListView struct {
	store     Store
	storage   Storage
	notifier  *Notifier
	confirmer Confirmer

	mu       sync.Mutex
	sub      *Subscription
	state    ViewState
	receipts []Receipt
}

// NewListView creates a ListView. storage may be nil if stored images
// should not be cleaned up on delete.
func NewListView(store Store, storage Storage, notifier *Notifier, confirmer Confirmer) *ListView {
	return &ListView{
		store:     store,
		storage:   storage,
		notifier:  notifier,
		confirmer: confirmer,
		state:     ViewIdle,
	}
}

// Activate loads the list and subscribes to change signals. Activating an
// already-active view is a no-op.
func (v *ListView) Activate() {
	v.mu.Lock()
	if v.sub != nil {
		v.mu.Unlock()
		return
	}
	v.sub = v.notifier.Subscribe(v.load)
	v.mu.Unlock()

	v.load()
}

// Deactivate releases the subscription so no handler runs against a
// torn-down view. The last view state is kept for a later reactivation.
func (v *ListView) Deactivate() {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	sub.Cancel()
}

// Refresh is the user-invoked reload; it takes the same path as a signal.
func (v *ListView) Refresh() {
	v.load()
}

// load re-reads the store and replaces the view state wholesale.
func (v *ListView) load() {
	v.mu.Lock()
	v.state = ViewLoading
	v.mu.Unlock()

	receipts, err := v.store.Read()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		slog.Error("Error loading receipts", "error", err)
		// Keep whatever was displayed before; first load shows empty.
		if v.receipts == nil {
			v.state = ViewEmpty
			v.receipts = []Receipt{}
		} else if len(v.receipts) > 0 {
			v.state = ViewPopulated
		} else {
			v.state = ViewEmpty
		}
		return
	}
	v.receipts = receipts
	if len(receipts) > 0 {
		v.state = ViewPopulated
	} else {
		v.state = ViewEmpty
	}
}

// State returns the current lifecycle state.
func (v *ListView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Receipts returns a copy of the current view contents.
func (v *ListView) Receipts() []Receipt {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Receipt, len(v.receipts))
	copy(out, v.receipts)
	return out
}

// DeleteOne removes the record matching id after user confirmation.
// Deleting an absent id leaves the list unchanged. The write goes through
// the same publish path as the producer so every active view converges.
func (v *ListView) DeleteOne(id string) error {
	if !v.confirmer.Confirm("Are you sure you want to delete this receipt?") {
		return nil
	}

	var removed *Receipt
	err := v.store.Update(func(receipts []Receipt) []Receipt {
		filtered := make([]Receipt, 0, len(receipts))
		for _, r := range receipts {
			if r.ID == id {
				rec := r
				removed = &rec
				continue
			}
			filtered = append(filtered, r)
		}
		return filtered
	})
	if err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}

	if removed != nil && removed.ImageURI != "" && v.storage != nil {
		if err := v.storage.Delete(removed.ImageURI); err != nil {
			slog.Warn("Failed to delete receipt image", "image", removed.ImageURI, "error", err)
		}
	}

	v.notifier.Publish()
	return nil
}

// DeleteAll clears the store after user confirmation. Clearing an already
// empty store succeeds.
func (v *ListView) DeleteAll() error {
	if !v.confirmer.Confirm("Are you sure you want to delete all receipts?") {
		return nil
	}

	receipts, err := v.store.Read()
	if err != nil {
		return fmt.Errorf("deleting all receipts: %w", err)
	}

	if err := v.store.Clear(); err != nil {
		return fmt.Errorf("deleting all receipts: %w", err)
	}

	if v.storage != nil {
		for _, r := range receipts {
			if r.ImageURI == "" {
				continue
			}
			if err := v.storage.Delete(r.ImageURI); err != nil {
				slog.Warn("Failed to delete receipt image", "image", r.ImageURI, "error", err)
			}
		}
	}

	v.notifier.Publish()
	return nil
}
