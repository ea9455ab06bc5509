package confirmation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

var now = time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC)

func TestInitiate_DefaultDeadline(t *testing.T) {
	e := Initiate(shared.NewPropositionID(), nil, 0, now)

	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), e.Deadline)
	assert.Nil(t, e.Date)
}

func TestInitiate_DeadlineClampsToMonthEnd(t *testing.T) {
	leapDay := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	e := Initiate(shared.NewPropositionID(), nil, 24, leapDay)

	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), e.Deadline)
}

func TestInitiate_GivenDeadline(t *testing.T) {
	deadline := now.AddDate(1, 0, 0)

	e := Initiate(shared.NewPropositionID(), &deadline, 24, now)

	assert.Equal(t, deadline, e.Deadline)
}

func TestExam_Complete(t *testing.T) {
	deadline := now.AddDate(0, 6, 0)
	cases := []struct {
		name    string
		date    time.Time
		wantErr bool
	}{
		{"before deadline", deadline.AddDate(0, 0, -1), false},
		{"on deadline", deadline, false},
		{"after deadline", deadline.AddDate(0, 0, 1), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Initiate(shared.NewPropositionID(), nil, 24, now)

			err := e.Complete(CompletionParams{Date: tc.date, Deadline: deadline, ResearchReport: []string{"report"}})

			if tc.wantErr {
				assert.ErrorIs(t, err, ErrDateAfterDeadline)
				assert.Nil(t, e.Date)
				return
			}
			require.NoError(t, err)
			dto := e.DTO()
			require.NotNil(t, dto.Date)
			assert.Equal(t, tc.date, *dto.Date)
			assert.Equal(t, deadline, dto.Deadline)
		})
	}
}

func TestExam_ExtensionRequest(t *testing.T) {
	e := Initiate(shared.NewPropositionID(), nil, 24, now)

	err := e.RequestExtension(ExtensionRequest{Justification: "illness"})
	assert.ErrorIs(t, err, ErrExtensionIncomplete)
	assert.Nil(t, e.Extension)

	assert.ErrorIs(t, e.SubmitCDDOpinion("fine"), ErrNoExtensionRequest)

	request := ExtensionRequest{NewDeadline: now.AddDate(3, 0, 0), Justification: "illness"}
	require.NoError(t, e.RequestExtension(request))
	assert.ErrorIs(t, e.RequestExtension(request), ErrExtensionAlreadyPending)

	assert.ErrorIs(t, e.SubmitCDDOpinion(""), ErrOpinionRequired)
	assert.True(t, e.Extension.Pending())

	require.NoError(t, e.SubmitCDDOpinion("granted"))
	assert.False(t, e.Extension.Pending())
	assert.ErrorIs(t, e.SubmitCDDOpinion("refused"), ErrNoExtensionRequest)
	assert.Equal(t, "granted", e.Extension.CDDOpinion)
	require.NoError(t, e.RequestExtension(request))
	assert.Empty(t, e.Extension.CDDOpinion)
}

func TestExam_DTODoesNotAlias(t *testing.T) {
	e := Initiate(shared.NewPropositionID(), nil, 24, now)
	require.NoError(t, e.Complete(CompletionParams{Date: now, Deadline: now, CAReport: []string{"ca"}}))

	dto := e.DTO()
	dto.CAReport[0] = "changed"

	assert.Equal(t, "ca", e.CAReport[0])
}
