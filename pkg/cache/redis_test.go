package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "diary:journal:t1:subjects", Key("journal", "t1", "subjects"))
	assert.Equal(t, "diary:journal:t1:*", Key("journal", "t1", "*"))
}
