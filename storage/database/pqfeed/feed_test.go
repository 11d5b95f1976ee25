package pqfeed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core/entry"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    entry.Change
		wantErr bool
	}{
		{
			name:    "insert",
			payload: `{"op":"INSERT","entry":{"id":"7d0c3c3e-0000-4000-8000-000000000001","name":"Ana","expectation":"Robótica","created_at":"2024-03-01T10:00:00.123456+00:00"}}`,
			want: entry.Change{
				Op: entry.OpInsert,
				Entry: entry.Entry{
					ID:          "7d0c3c3e-0000-4000-8000-000000000001",
					Name:        "Ana",
					Expectation: "Robótica",
					CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC),
				},
			},
		},
		{
			name:    "delete with null expectation",
			payload: `{"op":"DELETE","entry":{"id":"x1","name":"Carlos","expectation":null,"created_at":"2024-03-01T10:00:00+00:00"}}`,
			want: entry.Change{
				Op:    entry.OpDelete,
				Entry: entry.Entry{ID: "x1", Name: "Carlos", CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
			},
		},
		{name: "update is not expected", payload: `{"op":"UPDATE","entry":{"id":"x1"}}`, wantErr: true},
		{name: "missing id", payload: `{"op":"INSERT","entry":{}}`, wantErr: true},
		{name: "garbage", payload: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Op, got.Op)
			assert.Equal(t, tt.want.Entry.ID, got.Entry.ID)
			assert.Equal(t, tt.want.Entry.Name, got.Entry.Name)
			assert.Equal(t, tt.want.Entry.Expectation, got.Entry.Expectation)
			assert.True(t, tt.want.Entry.CreatedAt.Equal(got.Entry.CreatedAt))
		})
	}
}
