package status

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvSinkPublish(t *testing.T) {
	t.Setenv("TREESH_TEST_STATUS", "")
	s := NewEnvSink("TREESH_TEST_STATUS")

	s.Publish(0)
	got, ok := Last("TREESH_TEST_STATUS")
	assert.True(t, ok)
	assert.Equal(t, 0, got)

	s.Publish(130)
	assert.Equal(t, "130", os.Getenv("TREESH_TEST_STATUS"))
	got, ok = Last("TREESH_TEST_STATUS")
	assert.True(t, ok)
	assert.Equal(t, 130, got)
}

func TestNewEnvSinkDefault(t *testing.T) {
	assert.Equal(t, DefaultVar, NewEnvSink("").Var)
}

func TestLastMissingOrGarbage(t *testing.T) {
	_, ok := Last("TREESH_TEST_UNSET_STATUS")
	assert.False(t, ok)

	t.Setenv("TREESH_TEST_STATUS", "nope")
	_, ok = Last("TREESH_TEST_STATUS")
	assert.False(t, ok)
}
