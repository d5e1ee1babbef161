package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobWithApplications_MarshalJSON(t *testing.T) {
	job := Job{ID: uuid.New(), Title: "Go Dev", Status: JobStatusOpen}

	tests := []struct {
		name        string
		apps        []ApplicantView
		wantKey     bool
		wantPayload string
	}{
		{name: "not requested", apps: nil, wantKey: false},
		{name: "requested, none yet", apps: []ApplicantView{}, wantKey: true, wantPayload: "[]"},
		{name: "requested", apps: []ApplicantView{{ApplicantName: "Ana"}}, wantKey: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(JobWithApplications{Job: job, Applications: tt.apps})
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &fields))
			assert.Equal(t, `"Go Dev"`, string(fields["title"]))

			got, ok := fields["applications"]
			assert.Equal(t, tt.wantKey, ok)
			if tt.wantPayload != "" {
				assert.Equal(t, tt.wantPayload, string(got))
			}
		})
	}
}
