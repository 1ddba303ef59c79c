package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	name        string
	initialized bool
}

func (s *stubService) Name() string { return s.name }
func (s *stubService) Initialize() error {
	s.initialized = true
	return nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	service := &stubService{name: "stub"}
	require.NoError(t, registry.RegisterService(service))

	got, err := registry.GetService("stub")
	require.NoError(t, err)
	assert.Same(t, service, got)

	_, err = registry.GetService("missing")
	assert.Error(t, err)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.RegisterService(&stubService{name: "stub"}))
	assert.Error(t, registry.RegisterService(&stubService{name: "stub"}))
}

func TestRegistry_InitializeAll(t *testing.T) {
	registry := NewRegistry()
	first := &stubService{name: "first"}
	second := &stubService{name: "second"}
	require.NoError(t, registry.RegisterService(first))
	require.NoError(t, registry.RegisterService(second))

	require.NoError(t, registry.InitializeAll())

	assert.True(t, first.initialized)
	assert.True(t, second.initialized)
}
