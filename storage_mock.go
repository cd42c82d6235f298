package fundmatch

import (
	"context"
	"errors"
	"fmt"
	md "fundmatch/internal/model"
	"slices"
	"sync"
	"time"
)

var errMockNotFound = errors.New("record not found")

type StorageMock struct {
	mu        sync.Mutex
	funds     []md.Fund
	hist      map[uint][]md.FundHistory
	favorites map[uint][]uint
	events    map[uint]bool
	locks     map[string]string
	lockErr   error
	err       error
	upserts   int
}

func NewStorageMock() *StorageMock {
	return &StorageMock{
		hist:      make(map[uint][]md.FundHistory),
		favorites: make(map[uint][]uint),
		events:    make(map[uint]bool),
		locks:     make(map[string]string),
	}
}

func (m *StorageMock) addFund(cnpj, class string) md.Fund {
	f, _ := m.UpsertFund(cnpj, "fund "+cnpj, class, 0, 0, 0)
	return *f
}

func (m *StorageMock) favorite(userID uint, fundIDs ...uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[userID] = append(m.favorites[userID], fundIDs...)
}

func (m *StorageMock) UpsertFund(cnpj, name, className string, rentability, risk, sharpe float64) (*md.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.upserts++

	for i := range m.funds {
		if m.funds[i].Cnpj == cnpj {
			m.funds[i].Name = name
			m.funds[i].ClassName = className
			m.funds[i].Rentability, m.funds[i].Risk, m.funds[i].Sharpe = &rentability, &risk, &sharpe
			f := m.funds[i]
			return &f, nil
		}
	}

	f := md.Fund{
		ID:          uint(len(m.funds) + 1),
		Cnpj:        cnpj,
		Name:        name,
		ClassName:   className,
		Rentability: &rentability,
		Risk:        &risk,
		Sharpe:      &sharpe,
	}
	m.funds = append(m.funds, f)
	return &f, nil
}

func (m *StorageMock) Fund(id uint) (*md.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.funds {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("fund %d: %w", id, errMockNotFound)
}

func (m *StorageMock) Funds(skip, limit int) ([]md.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if skip >= len(m.funds) {
		return []md.Fund{}, nil
	}
	end := min(skip+limit, len(m.funds))
	return slices.Clone(m.funds[skip:end]), nil
}

func (m *StorageMock) FundsByClass(className string, excludeIDs []uint, limit int) ([]md.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rtn := []md.Fund{}
	for _, f := range m.funds {
		if len(rtn) == limit {
			break
		}
		if f.ClassName == className && !slices.Contains(excludeIDs, f.ID) {
			rtn = append(rtn, f)
		}
	}
	return rtn, nil
}

func (m *StorageMock) UpdateFundMetrics(fundID uint, rentability, risk, sharpe float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.funds {
		if m.funds[i].ID == fundID {
			m.funds[i].Rentability, m.funds[i].Risk, m.funds[i].Sharpe = &rentability, &risk, &sharpe
			return nil
		}
	}
	return fmt.Errorf("fund %d: %w", fundID, errMockNotFound)
}

func (m *StorageMock) AppendHistory(fundID uint, points []md.FundHistory) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range points {
		dup := slices.ContainsFunc(m.hist[fundID], func(h md.FundHistory) bool {
			return time.Time(h.Date).Equal(time.Time(p.Date))
		})
		if dup {
			continue
		}
		p.FundID = fundID
		m.hist[fundID] = append(m.hist[fundID], p)
		n++
	}
	return n, nil
}

func (m *StorageMock) CountHistory(fundID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.hist[fundID])), nil
}

func (m *StorageMock) ListHistory(fundID uint, limit int) ([]md.FundHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hist := slices.Clone(m.hist[fundID])
	slices.SortFunc(hist, func(a, b md.FundHistory) int {
		return time.Time(a.Date).Compare(time.Time(b.Date))
	})
	if len(hist) > limit {
		hist = hist[:limit]
	}
	return hist, nil
}

func (m *StorageMock) Favorites(userID uint) ([]md.Fund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rtn := []md.Fund{}
	for _, f := range m.funds {
		if slices.Contains(m.favorites[userID], f.ID) {
			rtn = append(rtn, f)
		}
	}
	return rtn, nil
}

func (m *StorageMock) RetreiveEventIsActive(eventId uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	active, ok := m.events[eventId]
	if !ok {
		m.events[eventId] = true
		return true
	}
	return active
}

func (m *StorageMock) UpdateEventIsActive(eventId uint, isActive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventId] = isActive
	return nil
}

func (m *StorageMock) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockErr != nil {
		return "", false, m.lockErr
	}
	if _, held := m.locks[key]; held {
		return "", false, nil
	}
	token := fmt.Sprintf("token-%s", key)
	m.locks[key] = token
	return token, true, nil
}

func (m *StorageMock) ReleaseLock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] == token {
		delete(m.locks, key)
	}
	return nil
}

type FetcherMock struct {
	rows  []md.FeedRow
	err   error
	calls int
}

func (f *FetcherMock) CvmFunds(ctx context.Context, limit int) ([]md.FeedRow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}
