package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresence_Put(t *testing.T) {
	tests := []struct {
		name        string
		login       string
		displayName string
		want        []string
	}{
		{
			name:        "display_name_differing_by_case_wins",
			login:       "forsen",
			displayName: "Forsen",
			want:        []string{"Forsen"},
		},
		{
			name:        "localized_display_name_falls_back_to_login",
			login:       "testaccount",
			displayName: "テスト",
			want:        []string{"testaccount"},
		},
		{
			name:        "empty_display_name_keeps_login",
			login:       "nymn",
			displayName: "",
			want:        []string{"nymn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPresence()
			p.Put(tt.login, tt.displayName)
			assert.Equal(t, tt.want, p.Snapshot())
		})
	}
}

func TestPresence_PutIfAbsentKeepsDisplayName(t *testing.T) {
	p := NewPresence()
	p.Put("forsen", "Forsen")
	p.PutIfAbsent("forsen")

	assert.Equal(t, []string{"Forsen"}, p.Snapshot())
}

func TestPresence_SnapshotSorted(t *testing.T) {
	p := NewPresence()
	p.Put("nymn", "NymN")
	p.Put("forsen", "Forsen")
	p.PutIfAbsent("bajlada")

	assert.Equal(t, []string{"Forsen", "NymN", "bajlada"}, p.Snapshot())
}
