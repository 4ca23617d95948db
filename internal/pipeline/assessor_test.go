package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authtriage/internal/compress"
	"authtriage/internal/metrics"
	"authtriage/pkg/models"
)

const bruteForceLogs = `Jan 10 10:00:01 host sshd[1]: Failed password for root from 10.0.0.1 port 22 ssh2
Jan 10 10:00:02 host sshd[1]: Failed password for root from 10.0.0.2 port 22 ssh2
Jan 10 10:00:03 host sshd[1]: Failed password for root from 10.0.0.3 port 22 ssh2
Jan 10 10:00:04 host sshd[1]: Failed password for root from 10.0.0.4 port 22 ssh2
Jan 10 10:00:05 host sshd[1]: Failed password for root from 10.0.0.5 port 22 ssh2
Jan 10 10:00:06 host sshd[2]: Accepted password for deploy from 10.0.0.9 port 22 ssh2`

func TestAssessBuildsFullReport(t *testing.T) {
	a := NewAssessor(nil, nil, metrics.New())

	report := a.Assess(context.Background(), "web-01", bruteForceLogs)

	require.NotNil(t, report)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "web-01", report.Source)
	assert.False(t, report.AnalyzedAt.IsZero())
	assert.Equal(t, 5, report.Features.FailedPassword)
	assert.True(t, report.Features.RootTargeted)
	assert.Len(t, report.Features.SourceIPs, 6)
	assert.Len(t, report.Timeline, 6)
	assert.Equal(t, models.EventFailed, report.Timeline[0].Category)
	assert.Equal(t, models.EventSuccess, report.Timeline[5].Category)
	assert.NotEmpty(t, report.Summary)
	assert.True(t, report.Compression.Fallback)
	assert.Empty(t, report.RuleMatches)
}

func TestAssessVerdictIgnoresCompressionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := compress.NewClient(compress.Config{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	failing := NewAssessor(compress.NewCompressor(client, "", nil), nil, nil)
	local := NewAssessor(nil, nil, nil)

	got := failing.Assess(context.Background(), "", bruteForceLogs)
	want := local.Assess(context.Background(), "", bruteForceLogs)

	assert.True(t, got.Compression.Fallback)
	assert.Equal(t, want.Verdict, got.Verdict)
	assert.Equal(t, want.Summary, got.Summary)
}

func TestAssessEmptyInputIsBaseline(t *testing.T) {
	a := NewAssessor(nil, nil, nil)

	report := a.Assess(context.Background(), "", "")

	assert.Equal(t, models.RiskLow, report.Verdict.Risk)
	assert.Equal(t, 10, report.Verdict.Severity)
	assert.Equal(t, 50, report.Verdict.Confidence)
	assert.Empty(t, report.Verdict.AttackLabels)
	assert.Empty(t, report.Timeline)
	assert.Equal(t, 0, report.Compression.OriginalTokens)
}

func TestDecodePayload(t *testing.T) {
	source, logs, err := DecodePayload([]byte(`{"id":"abc","source":"bastion","logs":"line1\nline2"}`))
	require.NoError(t, err)
	assert.Equal(t, "bastion", source)
	assert.Equal(t, "line1\nline2", logs)

	source, logs, err = DecodePayload([]byte(`{"id":"abc","logs":""}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", source)
	assert.Equal(t, "", logs)

	raw := "Jan 10 10:00:01 host sshd[1]: Failed password for root"
	source, logs, err = DecodePayload([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "", source)
	assert.Equal(t, raw, logs)
}

func TestDecodePayloadRejectsBadEnvelope(t *testing.T) {
	_, _, err := DecodePayload([]byte(`{"message":"no logs"}`))
	assert.ErrorIs(t, err, errMissingLogs)

	_, _, err = DecodePayload([]byte(`{"logs": 12`))
	assert.Error(t, err)
}
