package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/bac-archiver/models"
)

func sampleResults() []SourceResult {
	mate := &models.ExamDescriptor{Subject: "mate", Session: models.SessionModel}
	info := &models.ExamDescriptor{Subject: "info", Session: models.SessionModel}
	return []SourceResult{
		{
			Link:   models.SourceLink{URL: "http://x/E_c_matematica_2025.zip", Origin: "http://x/"},
			Status: StatusProcessed,
			Documents: []DocumentResult{
				{
					Name:       "E_c_matematica_M_mate-info_2025_var_model_LRO.pdf",
					Descriptor: mate,
					Decision:   &models.PlacementDecision{Destinations: []string{"mate/pages/mate-info/2025/Model"}, Filename: "E_c_matematica_M_mate-info_2025_var_model.pdf"},
					Outcome:    "written",
				},
				{
					Name:       "E_c_matematica_M_mate-info_2025_bar_model_LRO.pdf",
					Descriptor: mate,
					Decision:   &models.PlacementDecision{Destinations: []string{"mate/pages/mate-info/2025/Model"}, Filename: "E_c_matematica_M_mate-info_2025_bar_model.pdf"},
					Outcome:    "unchanged",
				},
				{Name: "E_c_matematica_2025_var_model_LMA.pdf", Outcome: OutcomeExcluded},
				{Name: "readme.pdf", Outcome: OutcomeFailed, Err: &models.ParseFailure{Filename: "readme.pdf", Reason: "no structural pattern matched"}},
			},
		},
		{
			Link:   models.SourceLink{URL: "http://x/E_d_informatica_2025.zip"},
			Status: StatusProcessed,
			Documents: []DocumentResult{
				{
					Name:       "E_d_informatica_2025_sp_MI_bar_model_LRO.pdf",
					Descriptor: info,
					Decision: &models.PlacementDecision{
						Destinations: []string{"info/pages/mate-info-C/2025/Model", "info/pages/mate-info-Pascal/2025/Model"},
						Filename:     "E_d_informatica_2025_sp_MI_bar_model.pdf",
					},
					Outcome: "conflict",
				},
			},
		},
		{Link: models.SourceLink{URL: "http://x/E_c_istorie_2025.zip"}, Status: StatusSkipped},
		{
			Link:   models.SourceLink{URL: "http://x/E_c_geografie_2025.zip"},
			Status: StatusFailed,
			Err:    &models.TransportFailure{URL: "http://x/E_c_geografie_2025.zip", Err: errors.New("status 404")},
		},
	}
}

func TestBuild(t *testing.T) {
	s := Build(RunInfo{Year: "2025", RulesVersion: "2025.1", Pages: 3, NewSources: 2, LedgerSize: 7}, sampleResults())

	assert.Equal(t, 4, s.SourcesSeen)
	assert.Equal(t, 1, s.SourcesSkipped)
	assert.Equal(t, 1, s.SourcesFailed)
	assert.Equal(t, 2, s.DocumentsPlaced)
	assert.Equal(t, 1, s.DocumentsUnchanged)
	assert.Equal(t, 1, s.DocumentsConflict)
	assert.Equal(t, 1, s.DocumentsExcluded)
	assert.Equal(t, 1, s.DocumentsFailed)
	assert.Equal(t, 2, s.NewSources)
	assert.True(t, s.Failed())

	assert.Equal(t, []string{"mate:2", "info:1"}, s.TopSubjects)
	assert.Equal(t, []string{"Model:3"}, s.TopSessions)

	require.Len(t, s.Sources, 4)
	assert.Equal(t, models.ErrorTypeFetch, s.Sources[3].ErrorType)
	assert.Equal(t, models.ErrorTypeParse, s.Sources[0].Documents[3].ErrorType)
	assert.Equal(t, models.ErrorTypeExcluded, s.Sources[0].Documents[2].ErrorType)
	assert.Equal(t, []string{
		"info/pages/mate-info-C/2025/Model/E_d_informatica_2025_sp_MI_bar_model.pdf",
		"info/pages/mate-info-Pascal/2025/Model/E_d_informatica_2025_sp_MI_bar_model.pdf",
	}, s.Sources[1].Documents[0].Destinations)
}

func TestBuild_CleanRun(t *testing.T) {
	s := Build(RunInfo{Year: "2025"}, nil)
	assert.False(t, s.Failed())
	assert.Empty(t, s.TopSubjects)

	s.Interrupted = true
	assert.True(t, s.Failed())
}

func TestWrite(t *testing.T) {
	s := Build(RunInfo{Year: "2025"}, sampleResults())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2025", decoded["year"])

	buf.Reset()
	require.NoError(t, Write(&buf, s, "yaml"))
	assert.True(t, strings.Contains(buf.String(), "documents_placed: 2"), buf.String())

	assert.Error(t, Write(&buf, s, "xml"))
}

func TestTop(t *testing.T) {
	counts := Reduce([]map[string]int{
		{"mate": 2, "info": 1, "": 4},
		{"info": 1, "bio": 2},
	})
	assert.Equal(t, map[string]int{"mate": 2, "info": 2, "bio": 2}, counts)
	assert.Equal(t, []string{"bio:2", "info:2"}, Top(counts, 2))
	assert.Nil(t, Top(nil, 5))
}
