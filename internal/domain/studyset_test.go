package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStudySetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "My First Flashcard Set", DefaultStudySetName(0))
	assert.Equal(t, "Untitled Set 2", DefaultStudySetName(1))
	assert.Equal(t, "Untitled Set 6", DefaultStudySetName(5))
}

func TestResolveStudySetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Biology", ResolveStudySetName("  Biology ", 3))
	assert.Equal(t, FirstStudySetName, ResolveStudySetName("   ", 0))
	assert.Equal(t, "Untitled Set 3", ResolveStudySetName("", 2))
}

func TestSessionOwns(t *testing.T) {
	t.Parallel()

	var zero Session
	assert.False(t, zero.Authenticated())
	assert.False(t, zero.Owns(""))

	s := Session{UserID: "u1", Token: "t"}
	assert.True(t, s.Authenticated())
	assert.True(t, s.Owns("u1"))
	assert.False(t, s.Owns("u2"))
}

func TestStudySetPersisted(t *testing.T) {
	t.Parallel()

	assert.False(t, StudySet{Name: "x"}.Persisted())
	assert.True(t, StudySet{ID: "1"}.Persisted())
}
