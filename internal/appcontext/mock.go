package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/mieux-choisir/foodmap"
)

// Mock provides a mock implementation of Interface for testing.
// If a function field is nil, the method returns a zero value.
type Mock struct {
	ClientFunc            func() (foodmap.Client, error)
	ClientWithOptionsFunc func(...foodmap.Option) (foodmap.Client, error)
	LoggerFunc            func() *zerolog.Logger
	Format                string
	VersionString         string
}

var _ Interface = (*Mock)(nil)

// Client returns a client using the mock function or nil.
func (m *Mock) Client() (foodmap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// ClientWithOptions returns a client using the mock function, falling back
// to Client.
func (m *Mock) ClientWithOptions(opts ...foodmap.Option) (foodmap.Client, error) {
	if m.ClientWithOptionsFunc != nil {
		return m.ClientWithOptionsFunc(opts...)
	}
	return m.Client()
}

// Logger returns the mock logger or a disabled one.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	nop := zerolog.Nop()
	return &nop
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string { return m.Format }

// Version returns VersionString.
func (m *Mock) Version() string { return m.VersionString }

// Commit returns an empty commit.
func (m *Mock) Commit() string { return "" }

// Date returns an empty date.
func (m *Mock) Date() string { return "" }

// BuiltBy returns an empty builder.
func (m *Mock) BuiltBy() string { return "" }
