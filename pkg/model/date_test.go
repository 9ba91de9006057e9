package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T10:00:00Z"`), &d))
	assert.Equal(t, "2024-03-01", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(out))

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-12-31", d.String())

	require.NoError(t, d.Scan([]byte("2025-01-02")))
	assert.Equal(t, "2025-01-02", d.String())

	assert.Error(t, d.Scan(42))
}
