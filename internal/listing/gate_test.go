package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGateClaimCommitRelease(t *testing.T) {
	g := NewGate()

	assert.True(t, g.Claim("2024-06-10"))
	assert.False(t, g.Claim("2024-06-10"), "in-flight date cannot be claimed twice")
	g.Release("2024-06-10")
	assert.True(t, g.Claim("2024-06-10"))
	g.Commit("2024-06-10")
	assert.False(t, g.Claim("2024-06-10"))
	assert.Equal(t, "2024-06-10", g.Last())

	assert.True(t, g.Claim("2024-06-11"))
	g.Commit("2024-06-11")
	assert.True(t, g.Claim("2024-06-10"), "only the last delivered date is remembered")
}

func TestDefaultDate(t *testing.T) {
	tests := []struct {
		now  string
		want string
	}{
		{"2024-06-12", "2024-06-10"}, // Wednesday -> Monday
		{"2024-06-14", "2024-06-12"}, // Friday -> Wednesday
		{"2024-06-10", "2024-06-06"}, // Monday -> Saturday -> Thursday
		{"2024-06-11", "2024-06-07"}, // Tuesday -> Sunday -> Friday
		{"2024-03-01", "2024-02-28"},
	}
	for _, tt := range tests {
		now, err := time.Parse("2006-01-02", tt.now)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, DefaultDate(now.Add(14*time.Hour)), tt.now)
	}
}

func TestBuildQueryURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/innsyn.aspx?response=journalpost_postliste&fradato=2024-06-10T00:00:00",
		BuildQueryURL("https://example.com/innsyn.aspx?response=journalpost_postliste", "2024-06-10"))
	assert.Equal(t,
		"https://example.com/innsyn.aspx?fradato=2024-06-10T00:00:00",
		BuildQueryURL("https://example.com/innsyn.aspx", "2024-06-10"))
}
