package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Setenv("ODCA_TEST_STRING", "ledger")
	t.Setenv("ODCA_TEST_INT", "31")
	t.Setenv("ODCA_TEST_BAD_INT", "thirty")
	t.Setenv("ODCA_TEST_BOOL", "true")

	assert.Equal(t, "ledger", GetString("ODCA_TEST_STRING", "x"))
	assert.Equal(t, "x", GetString("ODCA_TEST_MISSING", "x"))
	assert.Equal(t, 31, GetInt("ODCA_TEST_INT", 4))
	assert.Equal(t, 4, GetInt("ODCA_TEST_BAD_INT", 4))
	assert.True(t, GetBool("ODCA_TEST_BOOL", false))
	assert.False(t, GetBool("ODCA_TEST_MISSING", false))
}
