package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultgraph/engine/fta"
)

func sampleRun() *fta.AnalysisRun {
	p := 0.02
	return &fta.AnalysisRun{
		ID:         "test-run",
		IndexNames: map[int]string{1: "a", 2: "b"},
		Fta: &fta.FtaResult{
			TopID:        "TOP",
			PrimaryCount: 2,
			GateCount:    1,
			MaxOrder:     2,
			MCS:          []fta.MCSEntry{{Literals: []int{1, 2}, Probability: &p}},
		},
		Prob: &fta.ProbResult{
			Approx: "default",
			PTotal: 0.02,
			Importance: []fta.ImportanceEntry{
				{EventID: "a", Contribution: 0.02, Relative: 1.0},
			},
		},
	}
}

func TestWriteTextIncludesTopEventAndMCS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleRun()))
	out := buf.String()
	assert.Contains(t, out, "TOP")
	assert.Contains(t, out, "a, b")
	assert.Contains(t, out, "default")
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRun()))

	var decoded jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "TOP", decoded.TopEvent)
	require.Len(t, decoded.MCS, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, decoded.MCS[0].Literals)
}

func TestLiteralNamesHandlesNegationAndUnity(t *testing.T) {
	names := map[int]string{1: "a"}
	assert.Equal(t, "(unity)", literalNames(nil, names))
	assert.Equal(t, "NOT a", literalNames([]int{-1}, names))
}

func TestWriteTextIncludesWarnings(t *testing.T) {
	run := sampleRun()
	run.Warnings = assertError("UNITY case")
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, run))
	assert.Contains(t, buf.String(), "UNITY case")
}

type stringError string

func (e stringError) Error() string { return string(e) }

func assertError(msg string) error { return stringError(msg) }
