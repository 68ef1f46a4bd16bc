package templatemanager

import (
	"sync"
	"sync/atomic"

	"github.com/kaspanet/kaspad/app/appmessage"
	"github.com/pkg/errors"

	"github.com/vecno-foundation/vecnominer/domain/pow"
)

var currentState *pow.State
var isSynced bool
var lock = &sync.Mutex{}

// currentGeneration is bumped on every Set. Workers poll it to notice that
// the template they are grinding has gone stale without taking the lock.
var currentGeneration uint64

// Get returns the proof-of-work state for the current template, along with
// the generation it belongs to. The returned state is shared: callers must
// Clone it before mutating the nonce.
func Get() (*pow.State, uint64, bool) {
	lock.Lock()
	defer lock.Unlock()
	if currentState == nil {
		return nil, 0, false
	}
	return currentState, atomic.LoadUint64(&currentGeneration), isSynced
}

// Set replaces the current template with the given one and advances the
// generation so that in-flight workers abandon the old template. The
// generation only moves on success: a bad template leaves the previous one
// minable.
func Set(template *appmessage.GetBlockTemplateResponseMessage) error {
	lock.Lock()
	defer lock.Unlock()

	generation := atomic.LoadUint64(&currentGeneration) + 1
	state, err := pow.NewState(generation, template.Block)
	if err != nil {
		return errors.Wrap(err, "error building proof-of-work state for template")
	}

	currentState = state
	isSynced = template.IsSynced
	atomic.StoreUint64(&currentGeneration, generation)
	return nil
}

// Generation returns the generation of the template most recently Set.
func Generation() uint64 {
	return atomic.LoadUint64(&currentGeneration)
}
