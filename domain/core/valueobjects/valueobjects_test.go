package valueobjects

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalendarDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain date", input: "2024-05-01", want: "2024-05-01"},
		{name: "surrounding whitespace", input: "  2024-05-01 ", want: "2024-05-01"},
		{name: "rfc3339 truncated to day", input: "2024-05-01T18:30:00Z", want: "2024-05-01"},
		{name: "empty", input: "", wantErr: true},
		{name: "slashes", input: "2024/05/01", wantErr: true},
		{name: "unpadded", input: "2024-5-1", wantErr: true},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCalendarDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCalendarDate_CompareMatchesChronology(t *testing.T) {
	early := MustCalendarDate("2023-12-31")
	late := MustCalendarDate("2024-01-01")

	assert.Equal(t, -1, early.Compare(late))
	assert.Equal(t, 1, late.Compare(early))
	assert.Equal(t, 0, late.Compare(MustCalendarDate("2024-01-01")))
	assert.True(t, early.Time().Before(late.Time()))
}

func TestCalendarDate_JSON(t *testing.T) {
	var holder struct {
		Date CalendarDate `json:"date"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"date":"2023-02-14"}`), &holder))
	assert.Equal(t, "2023-02-14", holder.Date.String())

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2023-02-14"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"date":""}`), &holder))
	assert.True(t, holder.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"14/02/2023"}`), &holder))
	assert.Error(t, json.Unmarshal([]byte(`{"date":20230214}`), &holder))
}

func TestNewMemoryID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewMemoryID()
		require.False(t, id.IsZero())
		require.False(t, seen[id.String()], "duplicate id %s", id)
		seen[id.String()] = true
	}
}

func TestMemoryID_CreatedAt(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewMemoryID()

	created, ok := id.CreatedAt()
	require.True(t, ok)
	assert.True(t, created.After(before))
	assert.True(t, created.Before(time.Now().Add(time.Second)))

	legacy, err := NewMemoryIDFromString("1700000000000")
	require.NoError(t, err)
	_, ok = legacy.CreatedAt()
	assert.False(t, ok)
}

func TestMemoryID_JSON(t *testing.T) {
	id, err := NewMemoryIDFromString("1")
	require.NoError(t, err)

	out, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"1"`, string(out))

	var back MemoryID
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, id.Equals(back))

	_, err = NewMemoryIDFromString("")
	assert.Error(t, err)
}
