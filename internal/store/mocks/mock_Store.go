// Package mocks provides test doubles for the store package.
package mocks

import (
	"context"
	"time"

	model "github.com/sells-group/schema-gap/internal/model"
	store "github.com/sells-group/schema-gap/internal/store"
	mock "github.com/stretchr/testify/mock"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// GetCachedPage provides a mock function with given fields: ctx, urlHash
func (_m *MockStore) GetCachedPage(ctx context.Context, urlHash string) (*model.PageCache, error) {
	ret := _m.Called(ctx, urlHash)

	if len(ret) == 0 {
		panic("no return value specified for GetCachedPage")
	}

	var r0 *model.PageCache
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.PageCache, error)); ok {
		return rf(ctx, urlHash)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.PageCache)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// SetCachedPage provides a mock function with given fields: ctx, urlHash, page, ttl
func (_m *MockStore) SetCachedPage(ctx context.Context, urlHash string, page model.FetchedPage, ttl time.Duration) error {
	ret := _m.Called(ctx, urlHash, page, ttl)

	if len(ret) == 0 {
		panic("no return value specified for SetCachedPage")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, model.FetchedPage, time.Duration) error); ok {
		return rf(ctx, urlHash, page, ttl)
	}
	return ret.Error(0)
}

// DeleteExpiredPages provides a mock function with given fields: ctx
func (_m *MockStore) DeleteExpiredPages(ctx context.Context) (int, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for DeleteExpiredPages")
	}

	if rf, ok := ret.Get(0).(func(context.Context) (int, error)); ok {
		return rf(ctx)
	}
	return ret.Int(0), ret.Error(1)
}

// SaveRun provides a mock function with given fields: ctx, report
func (_m *MockStore) SaveRun(ctx context.Context, report *model.Report) error {
	ret := _m.Called(ctx, report)

	if len(ret) == 0 {
		panic("no return value specified for SaveRun")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *model.Report) error); ok {
		return rf(ctx, report)
	}
	return ret.Error(0)
}

// GetRun provides a mock function with given fields: ctx, runID
func (_m *MockStore) GetRun(ctx context.Context, runID string) (*model.Report, error) {
	ret := _m.Called(ctx, runID)

	if len(ret) == 0 {
		panic("no return value specified for GetRun")
	}

	var r0 *model.Report
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.Report, error)); ok {
		return rf(ctx, runID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Report)
	}
	return r0, ret.Error(1)
}

// ListRuns provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.RunSummary, error) {
	ret := _m.Called(ctx, filter)

	if len(ret) == 0 {
		panic("no return value specified for ListRuns")
	}

	var r0 []model.RunSummary
	if rf, ok := ret.Get(0).(func(context.Context, store.RunFilter) ([]model.RunSummary, error)); ok {
		return rf(ctx, filter)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.RunSummary)
	}
	return r0, ret.Error(1)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}
	return ret.Error(0)
}

// Close provides a mock function with given fields:
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}
	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
