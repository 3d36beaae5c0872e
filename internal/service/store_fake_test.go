package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finjar/internal/model"
	"finjar/internal/repository"
)

// fakeStore is an in-memory stand-in for the MySQL store. Locking mirrors the
// database: a plain read never blocks, a FOR UPDATE read takes the row's lock,
// and every lock taken inside WithTransaction is held until the transaction
// function returns. Whole transactions are NOT serialized against each other,
// so an unlocked read racing a locked mutation interleaves here exactly as it
// would under REPEATABLE READ.
type fakeStore struct {
	mu sync.Mutex // guards the maps and the lock table

	rowLocks   map[uuid.UUID]*sync.Mutex
	users      map[uuid.UUID]model.User
	jars       map[uuid.UUID]model.Jar
	deposits   map[uuid.UUID]model.Deposit
	activities map[uuid.UUID]model.JarActivity
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rowLocks:   make(map[uuid.UUID]*sync.Mutex),
		users:      make(map[uuid.UUID]model.User),
		jars:       make(map[uuid.UUID]model.Jar),
		deposits:   make(map[uuid.UUID]model.Deposit),
		activities: make(map[uuid.UUID]model.JarActivity),
	}
}

func (f *fakeStore) rowLock(id uuid.UUID) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lk, ok := f.rowLocks[id]
	if !ok {
		lk = &sync.Mutex{}
		f.rowLocks[id] = lk
	}
	return lk
}

// holdRow grabs a row lock from outside any transaction, so a test can park
// concurrent mutations on it and control the interleaving. Returns the
// release func.
func (f *fakeStore) holdRow(id uuid.UUID) func() {
	lk := f.rowLock(id)
	lk.Lock()
	return lk.Unlock
}

// fakeTx tracks the row locks a transaction has acquired; they are released
// together when the transaction ends, like InnoDB holding locks to commit.
type fakeTx struct {
	f    *fakeStore
	held []*sync.Mutex
}

func (t *fakeTx) lockRow(id uuid.UUID) {
	lk := t.f.rowLock(id)
	lk.Lock()
	t.held = append(t.held, lk)
}

func (t *fakeTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func (f *fakeStore) reposTx(tx *fakeTx) *repository.Repos {
	return &repository.Repos{
		Users:      &fakeUserRepo{f},
		Jars:       &fakeJarRepo{f: f, tx: tx},
		Deposits:   &fakeDepositRepo{f: f, tx: tx},
		Activities: &fakeActivityRepo{f},
	}
}

func (f *fakeStore) repos() *repository.Repos {
	return f.reposTx(nil)
}

// WithTransaction implements repository.TxManager.
func (f *fakeStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, r *repository.Repos) error) error {
	tx := &fakeTx{f: f}
	defer tx.release()
	return fn(ctx, f.reposTx(tx))
}

// addUser registers a user directly in the store.
func (f *fakeStore) addUser(name, email string) *model.User {
	user := model.User{ID: uuid.New(), Name: name, Email: email}
	f.mu.Lock()
	f.users[user.ID] = user
	f.mu.Unlock()
	return &user
}

// depositSum recomputes a jar's balance from the deposit rows, bypassing the
// stored balance. Used to assert the ledger invariant.
func (f *fakeStore) depositSum(jarID uuid.UUID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, d := range f.deposits {
		if d.JarID == jarID {
			sum = sum.Add(d.Amount)
		}
	}
	return sum
}

// storedJar returns the jar row as persisted.
func (f *fakeStore) storedJar(jarID uuid.UUID) (model.Jar, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jar, ok := f.jars[jarID]
	return jar, ok
}

// setBalance overwrites the stored balance, simulating drift.
func (f *fakeStore) setBalance(jarID uuid.UUID, balance decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jar := f.jars[jarID]
	jar.CurrentAmount = balance
	f.jars[jarID] = jar
}

func (f *fakeStore) activityCount(jarID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.activities {
		if a.JarID == jarID {
			n++
		}
	}
	return n
}

type fakeUserRepo struct{ f *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, user := range r.f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeJarRepo struct {
	f  *fakeStore
	tx *fakeTx
}

func (r *fakeJarRepo) Create(ctx context.Context, jar *model.Jar) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.jars[jar.ID] = *jar
	return nil
}

func (r *fakeJarRepo) Update(ctx context.Context, jar *model.Jar) error {
	return r.Create(ctx, jar)
}

func (r *fakeJarRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Jar, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	jars := make([]model.Jar, 0)
	for _, jar := range r.f.jars {
		if jar.UserID == ownerID {
			jars = append(jars, jar)
		}
	}
	return jars, nil
}

func (r *fakeJarRepo) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Jar, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	jar, ok := r.f.jars[id]
	if !ok || jar.UserID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &jar, nil
}

func (r *fakeJarRepo) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*model.Jar, error) {
	if r.tx != nil {
		r.tx.lockRow(id)
	}
	return r.FindByIDAndOwner(ctx, id, ownerID)
}

func (r *fakeJarRepo) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	jar, ok := r.f.jars[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	jar.CurrentAmount = balance
	r.f.jars[id] = jar
	return nil
}

func (r *fakeJarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.jars, id)
	return nil
}

type fakeDepositRepo struct {
	f  *fakeStore
	tx *fakeTx
}

func (r *fakeDepositRepo) Create(ctx context.Context, deposit *model.Deposit) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.deposits[deposit.ID] = *deposit
	return nil
}

func (r *fakeDepositRepo) Update(ctx context.Context, deposit *model.Deposit) error {
	return r.Create(ctx, deposit)
}

func (r *fakeDepositRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	deposit, ok := r.f.deposits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &deposit, nil
}

func (r *fakeDepositRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Deposit, error) {
	if r.tx != nil {
		r.tx.lockRow(id)
	}
	return r.FindByID(ctx, id)
}

func (r *fakeDepositRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Deposit, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	deposits := make([]model.Deposit, 0)
	for _, d := range r.f.deposits {
		if d.UserID == ownerID {
			deposits = append(deposits, d)
		}
	}
	return deposits, nil
}

func (r *fakeDepositRepo) FindByJarAndOwner(ctx context.Context, jarID, ownerID uuid.UUID) ([]model.Deposit, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	deposits := make([]model.Deposit, 0)
	for _, d := range r.f.deposits {
		if d.JarID == jarID && d.UserID == ownerID {
			deposits = append(deposits, d)
		}
	}
	return deposits, nil
}

func (r *fakeDepositRepo) SumByJar(ctx context.Context, jarID uuid.UUID) (decimal.Decimal, error) {
	return r.f.depositSum(jarID), nil
}

func (r *fakeDepositRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.deposits, id)
	return nil
}

func (r *fakeDepositRepo) DeleteByJar(ctx context.Context, jarID uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, d := range r.f.deposits {
		if d.JarID == jarID {
			delete(r.f.deposits, id)
		}
	}
	return nil
}

type fakeActivityRepo struct{ f *fakeStore }

func (r *fakeActivityRepo) Create(ctx context.Context, activity *model.JarActivity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.activities[activity.ID] = *activity
	return nil
}

func (r *fakeActivityRepo) FindByJarAndOwner(ctx context.Context, jarID, ownerID uuid.UUID) ([]model.JarActivity, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	activities := make([]model.JarActivity, 0)
	for _, a := range r.f.activities {
		if a.JarID == jarID && a.UserID == ownerID {
			activities = append(activities, a)
		}
	}
	return activities, nil
}

func (r *fakeActivityRepo) DeleteByJar(ctx context.Context, jarID uuid.UUID) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, a := range r.f.activities {
		if a.JarID == jarID {
			delete(r.f.activities, id)
		}
	}
	return nil
}
