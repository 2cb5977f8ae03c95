package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-labyrinth/domain"
	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
)

var errFake = errors.New("fake failure")

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*dmn.User
	completed map[uuid.UUID]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*dmn.User), completed: make(map[uuid.UUID]int)}
}

func (f *fakeUserRepo) Save(user *dmn.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username && u.ID != user.ID {
			return errFake
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) ByID(id uuid.UUID) (*dmn.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errFake
}

func (f *fakeUserRepo) ByUsername(username string) (*dmn.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errFake
}

func (f *fakeUserRepo) AddCompletedLevels(id uuid.UUID, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] += n
	return nil
}

func (f *fakeUserRepo) completedBy(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed[id]
}

type fakeTokenizer struct{}

func (fakeTokenizer) Generate(claims map[string]interface{}, _ time.Duration) (string, error) {
	return "token-for-" + claims["username"].(string), nil
}

func (fakeTokenizer) Decode(string) (map[string]interface{}, error) {
	return nil, errFake
}

type fakeRunRepo struct {
	mu      sync.Mutex
	records []*dmn.RunRecord
}

func (f *fakeRunRepo) Save(record *dmn.RunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRunRepo) ByPlayer(playerID uuid.UUID, limit int64) ([]*dmn.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*dmn.RunRecord
	for _, r := range f.records {
		if r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRunRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeLevelStore struct {
	mu        sync.Mutex
	levels    map[uuid.UUID]game.LevelSnapshot
	completed map[string]bool
	saveErr   error
}

func newFakeLevelStore() *fakeLevelStore {
	return &fakeLevelStore{levels: make(map[uuid.UUID]game.LevelSnapshot), completed: make(map[string]bool)}
}

func (f *fakeLevelStore) Save(_ context.Context, id uuid.UUID, level game.LevelSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.levels[id] = level
	return nil
}

func (f *fakeLevelStore) Load(_ context.Context, id uuid.UUID) (*game.LevelSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.levels[id]
	if !ok {
		return nil, errFake
	}
	return &l, nil
}

func (f *fakeLevelStore) MarkCompleted(_ context.Context, runID uuid.UUID, level int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s:%d", runID, level)
	if f.completed[key] {
		return false, nil
	}
	f.completed[key] = true
	return true, nil
}

type fakeSortedSet struct {
	mu     sync.Mutex
	scores map[string]map[string]float64
}

func newFakeSortedSet() *fakeSortedSet {
	return &fakeSortedSet{scores: make(map[string]map[string]float64)}
}

func (f *fakeSortedSet) AddIfLower(_ context.Context, key, member string, score float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.scores[key]
	if !ok {
		set = make(map[string]float64)
		f.scores[key] = set
	}
	if current, ok := set[member]; ok && score >= current {
		return false, nil
	}
	set[member] = score
	return true, nil
}

func (f *fakeSortedSet) TopN(_ context.Context, key string, n int64) ([]i.ScoredMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var members []i.ScoredMember
	for m, s := range f.scores[key] {
		members = append(members, i.ScoredMember{Member: m, Score: s})
	}
	sort.Slice(members, func(a, b int) bool { return members[a].Score < members[b].Score })
	if int64(len(members)) > n {
		members = members[:n]
	}
	return members, nil
}

func (f *fakeSortedSet) Count(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.scores[key])), nil
}
