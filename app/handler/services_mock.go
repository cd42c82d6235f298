package handler

import (
	"context"
	"fmt"
	"time"

	"fundmatch"
	"fundmatch/internal/db"
	"fundmatch/internal/metrics"
	m "fundmatch/internal/model"

	"github.com/kr/pretty"
	"github.com/shopspring/decimal"
)

/***************************** User ***********************************/

type UserStoreMock struct {
	users    map[uint]*m.User
	profiles map[uint]*m.InvestorProfile
	nextID   uint
	err      error
}

func NewUserStoreMock() *UserStoreMock {
	return &UserStoreMock{
		users:    make(map[uint]*m.User),
		profiles: make(map[uint]*m.InvestorProfile),
	}
}

func (mock *UserStoreMock) User(id uint) (*m.User, error) {
	fmt.Println("User Called")

	if mock.err != nil {
		return nil, mock.err
	}
	u, ok := mock.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, db.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (mock *UserStoreMock) UserByEmail(email string) (*m.User, error) {
	fmt.Println("UserByEmail Called")

	if mock.err != nil {
		return nil, mock.err
	}
	for _, u := range mock.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, db.ErrNotFound)
}

func (mock *UserStoreMock) Users(skip, limit int) ([]m.User, error) {
	fmt.Println("Users Called")

	if mock.err != nil {
		return nil, mock.err
	}
	rtn := []m.User{}
	for id := uint(1); id <= mock.nextID; id++ {
		if u, ok := mock.users[id]; ok {
			rtn = append(rtn, *u)
		}
	}
	if skip >= len(rtn) {
		return []m.User{}, nil
	}
	rtn = rtn[skip:]
	if len(rtn) > limit {
		rtn = rtn[:limit]
	}
	return rtn, nil
}

func (mock *UserStoreMock) CreateUser(name, email, hashedPassword string) (*m.User, error) {
	fmt.Println("CreateUser Called")

	if mock.err != nil {
		return nil, mock.err
	}
	for _, u := range mock.users {
		if u.Email == email {
			return nil, fmt.Errorf("user %s: %w", email, db.ErrDuplicate)
		}
	}
	mock.nextID++
	u := &m.User{ID: mock.nextID, Name: name, Email: email, Password: hashedPassword, CreatedAt: time.Now()}
	mock.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (mock *UserStoreMock) UpdateUser(id uint, name, email string) (*m.User, error) {
	fmt.Println("UpdateUser Called")

	if mock.err != nil {
		return nil, mock.err
	}
	u, ok := mock.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, db.ErrNotFound)
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	cp := *u
	return &cp, nil
}

func (mock *UserStoreMock) UpdatePassword(id uint, hashedPassword string) error {
	fmt.Println("UpdatePassword Called")

	u, ok := mock.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, db.ErrNotFound)
	}
	u.Password = hashedPassword
	return nil
}

func (mock *UserStoreMock) DeleteUser(id uint) error {
	fmt.Println("DeleteUser Called")

	if _, ok := mock.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, db.ErrNotFound)
	}
	delete(mock.users, id)
	delete(mock.profiles, id)
	return nil
}

func (mock *UserStoreMock) Profile(userID uint) (*m.InvestorProfile, error) {
	fmt.Println("Profile Called")

	p, ok := mock.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile of user %d: %w", userID, db.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (mock *UserStoreMock) SaveProfile(userID uint, risk m.RiskProfile, amount decimal.Decimal) (*m.InvestorProfile, error) {
	fmt.Println("SaveProfile Called")

	p, ok := mock.profiles[userID]
	if !ok {
		p = &m.InvestorProfile{ID: userID, UserID: userID}
		mock.profiles[userID] = p
	}
	p.RiskProfile = risk
	p.AmountAvailable = amount
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (mock *UserStoreMock) prettyPrint() {
	pretty.Println(mock.users)
	pretty.Println(mock.profiles)
}

/***************************** Login Guard ***********************************/

type LoginGuardMock struct {
	failures map[string]int64
	err      error
}

func NewLoginGuardMock() *LoginGuardMock {
	return &LoginGuardMock{failures: make(map[string]int64)}
}

func (mock *LoginGuardMock) RegisterLoginFailure(ctx context.Context, email string, window time.Duration) (int64, error) {
	if mock.err != nil {
		return 0, mock.err
	}
	mock.failures[email]++
	return mock.failures[email], nil
}

func (mock *LoginGuardMock) LoginFailures(ctx context.Context, email string) (int64, error) {
	if mock.err != nil {
		return 0, mock.err
	}
	return mock.failures[email], nil
}

func (mock *LoginGuardMock) ResetLoginFailures(ctx context.Context, email string) error {
	if mock.err != nil {
		return mock.err
	}
	delete(mock.failures, email)
	return nil
}

/***************************** Fund ***********************************/

type FundRetrieverMock struct {
	funds   []m.Fund
	hist    map[uint][]m.FundHistory
	classes []string
	err     error
}

func (mock FundRetrieverMock) Fund(id uint) (*m.Fund, error) {
	fmt.Println("Fund Called")

	if mock.err != nil {
		return nil, mock.err
	}
	for _, f := range mock.funds {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("fund %d: %w", id, db.ErrNotFound)
}

func (mock FundRetrieverMock) FundByCnpj(cnpj string) (*m.Fund, error) {
	fmt.Println("FundByCnpj Called")

	if mock.err != nil {
		return nil, mock.err
	}
	for _, f := range mock.funds {
		if f.Cnpj == cnpj {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("fund %s: %w", cnpj, db.ErrNotFound)
}

func (mock FundRetrieverMock) Funds(skip, limit int) ([]m.Fund, error) {
	fmt.Println("Funds Called")

	if mock.err != nil {
		return nil, mock.err
	}
	if skip >= len(mock.funds) {
		return []m.Fund{}, nil
	}
	rtn := mock.funds[skip:]
	if len(rtn) > limit {
		rtn = rtn[:limit]
	}
	return rtn, nil
}

func (mock FundRetrieverMock) ListHistory(fundID uint, limit int) ([]m.FundHistory, error) {
	fmt.Println("ListHistory Called")

	if mock.err != nil {
		return nil, mock.err
	}
	rtn := mock.hist[fundID]
	if len(rtn) > limit {
		rtn = rtn[:limit]
	}
	return rtn, nil
}

func (mock FundRetrieverMock) FundClasses() ([]string, error) {
	if mock.err != nil {
		return nil, mock.err
	}
	return mock.classes, nil
}

/***************************** Favorite ***********************************/

type FavoriteRepositoryMock struct {
	catalog map[uint]m.Fund
	favs    map[uint][]uint
	err     error
}

func NewFavoriteRepositoryMock(funds ...m.Fund) *FavoriteRepositoryMock {
	mock := &FavoriteRepositoryMock{
		catalog: make(map[uint]m.Fund),
		favs:    make(map[uint][]uint),
	}
	for _, f := range funds {
		mock.catalog[f.ID] = f
	}
	return mock
}

func (mock *FavoriteRepositoryMock) AddFavorite(userID, fundID uint) (*m.Favorite, error) {
	fmt.Println("AddFavorite Called")

	if mock.err != nil {
		return nil, mock.err
	}
	if _, ok := mock.catalog[fundID]; !ok {
		return nil, fmt.Errorf("fund %d: %w", fundID, db.ErrNotFound)
	}
	for _, id := range mock.favs[userID] {
		if id == fundID {
			return &m.Favorite{UserID: userID, FundID: fundID}, nil
		}
	}
	mock.favs[userID] = append(mock.favs[userID], fundID)
	return &m.Favorite{UserID: userID, FundID: fundID}, nil
}

func (mock *FavoriteRepositoryMock) RemoveFavorite(userID, fundID uint) error {
	fmt.Println("RemoveFavorite Called")

	if mock.err != nil {
		return mock.err
	}
	ids := mock.favs[userID]
	for i, id := range ids {
		if id == fundID {
			mock.favs[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("favorite %d/%d: %w", userID, fundID, db.ErrNotFound)
}

func (mock *FavoriteRepositoryMock) Favorites(userID uint) ([]m.Fund, error) {
	fmt.Println("Favorites Called")

	if mock.err != nil {
		return nil, mock.err
	}
	rtn := []m.Fund{}
	for _, id := range mock.favs[userID] {
		rtn = append(rtn, mock.catalog[id])
	}
	return rtn, nil
}

/***************************** Service ***********************************/

type ServiceMock struct {
	result   *metrics.Result
	recs     []m.Fund
	events   []*fundmatch.EnrolledEvent
	launched []uint
	err      error
}

func (mock *ServiceMock) ComputeAndStoreMetrics(fundID uint, riskFree float64) (*metrics.Result, error) {
	fmt.Println("ComputeAndStoreMetrics Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.result, nil
}

func (mock *ServiceMock) Recommendations(userID uint) ([]m.Fund, error) {
	fmt.Println("Recommendations Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.recs, nil
}

func (mock *ServiceMock) Events() []*fundmatch.EnrolledEvent {
	return mock.events
}

func (mock *ServiceMock) LaunchEvent(id uint) error {
	for _, ev := range mock.events {
		if ev.Id == id {
			if !ev.IsActive {
				return fmt.Errorf("비활성화 이벤트 Id: %d", id)
			}
			mock.launched = append(mock.launched, id)
			return nil
		}
	}
	return fmt.Errorf("미존재 Id : %d", id)
}

func (mock *ServiceMock) SetEventStatus(id uint, active bool) error {
	for _, ev := range mock.events {
		if ev.Id == id {
			ev.IsActive = active
			return nil
		}
	}
	return fmt.Errorf("미존재 Id : %d", id)
}
