package opt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type credentials struct {
	Username string
}

func TestNone(t *testing.T) {
	assert.False(t, None[string]().IsDefined())

	assert.Equal(t, 0, None[int]().Value())
	assert.Equal(t, "", None[string]().Value())
	assert.Nil(t, None[*string]().Value())
	assert.Equal(t, credentials{}, None[credentials]().Value())
}

func TestSome(t *testing.T) {
	assert.True(t, Some("").IsDefined())

	assert.Equal(t, 1, Some(1).Value())
	assert.Equal(t, credentials{Username: "rui"}, Some(credentials{Username: "rui"}).Value())
}

func TestString(t *testing.T) {
	assert.Equal(t, "[none]", None[int]().String())
	assert.Equal(t, "3", Some(3).String())
	assert.Equal(t, "1.5s", Some(1500*time.Millisecond).String())
	assert.Equal(t, "{rui}", Some(credentials{Username: "rui"}).String())
}
