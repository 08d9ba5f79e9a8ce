package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournalScopeGridPath(t *testing.T) {
	scope := JournalScope{Subject: "Математика", ClassName: "7А"}
	assert.Equal(t, "/journal/%D0%9C%D0%B0%D1%82%D0%B5%D0%BC%D0%B0%D1%82%D0%B8%D0%BA%D0%B0/7%D0%90/grades", scope.GridPath("grades"))

	assert.Equal(t, "/journal/Art%2FDesign/10B/attendance", JournalScope{Subject: "Art/Design", ClassName: "10B"}.GridPath("attendance"))
}
