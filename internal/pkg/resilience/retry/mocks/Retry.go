// Package mocks provides testify mocks for the retry package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Retry is a mock of retry.Retry.
type Retry struct {
	mock.Mock
}

type Retry_Expecter struct {
	mock *mock.Mock
}

func (m *Retry) EXPECT() *Retry_Expecter {
	return &Retry_Expecter{mock: &m.Mock}
}

// Execute provides a mock function with given fields: ctx, operation
func (m *Retry) Execute(ctx context.Context, operation func() error) error {
	ret := m.Called(ctx, operation)

	if rf, ok := ret.Get(0).(func(context.Context, func() error) error); ok {
		return rf(ctx, operation)
	}

	return ret.Error(0)
}

type Retry_Execute_Call struct {
	*mock.Call
}

// Execute is a helper method to define mock.On call
func (e *Retry_Expecter) Execute(ctx any, operation any) *Retry_Execute_Call {
	return &Retry_Execute_Call{Call: e.mock.On("Execute", ctx, operation)}
}

func (c *Retry_Execute_Call) Return(err error) *Retry_Execute_Call {
	c.Call.Return(err)
	return c
}

func (c *Retry_Execute_Call) RunAndReturn(run func(context.Context, func() error) error) *Retry_Execute_Call {
	c.Call.Return(run)
	return c
}

// NewRetry creates a Retry mock whose expectations are asserted on test cleanup.
func NewRetry(t interface {
	mock.TestingT
	Cleanup(func())
}) *Retry {
	m := &Retry{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
