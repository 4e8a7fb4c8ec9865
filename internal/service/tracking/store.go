package tracking

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
)

// driverState is owned by one driver. mu serializes that driver's pings;
// live is the published snapshot read without locking.
type driverState struct {
	mu         sync.Mutex
	last       *models.LocationPing
	window     []models.LocationPing
	progress   int
	deliveryID string
	name       string

	live atomic.Pointer[models.LivePosition]
}

type shard struct {
	mu      sync.RWMutex
	drivers map[string]*driverState
}

// LiveStore holds per-driver live state in fnv-hashed shards. The shard lock
// only guards map access; pings from different drivers never contend.
type LiveStore struct {
	shards []shard
	window int
}

func NewLiveStore(shards, window int) *LiveStore {
	if shards <= 0 {
		shards = 64
	}
	if window < 2 {
		window = 2
	}
	s := &LiveStore{shards: make([]shard, shards), window: window}
	for i := range s.shards {
		s.shards[i].drivers = make(map[string]*driverState)
	}
	return s
}

func (s *LiveStore) shardFor(driverID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(driverID))
	return &s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *LiveStore) lookup(driverID string) *driverState {
	sh := s.shardFor(driverID)
	sh.mu.RLock()
	st := sh.drivers[driverID]
	sh.mu.RUnlock()
	return st
}

// acquire returns the state of driverID, creating it if needed.
func (s *LiveStore) acquire(driverID string) *driverState {
	if st := s.lookup(driverID); st != nil {
		return st
	}
	sh := s.shardFor(driverID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	st, ok := sh.drivers[driverID]
	if !ok {
		st = &driverState{}
		sh.drivers[driverID] = st
	}
	return st
}

// push appends an accepted ping to the rolling window. st.mu must be held.
func (s *LiveStore) push(st *driverState, p models.LocationPing) {
	st.window = append(st.window, p)
	if over := len(st.window) - s.window; over > 0 {
		st.window = append(st.window[:0], st.window[over:]...)
	}
	last := p
	st.last = &last
}

// Get returns the live position of a driver.
func (s *LiveStore) Get(driverID string) (models.LivePosition, bool) {
	st := s.lookup(driverID)
	if st == nil {
		return models.LivePosition{}, false
	}
	lp := st.live.Load()
	if lp == nil {
		return models.LivePosition{}, false
	}
	return *lp, true
}

// Snapshot returns live positions received after since. A zero since
// returns all of them. It may be up to one ingestion behind.
func (s *LiveStore) Snapshot(since time.Time) []models.LivePosition {
	var out []models.LivePosition
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for _, st := range sh.drivers {
			if lp := st.live.Load(); lp != nil && lp.ReceivedAt.After(since) {
				out = append(out, *lp)
			}
		}
		sh.mu.RUnlock()
	}
	return out
}

// Len returns the number of drivers with state.
func (s *LiveStore) Len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.RLock()
		n += len(s.shards[i].drivers)
		s.shards[i].mu.RUnlock()
	}
	return n
}
