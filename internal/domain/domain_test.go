package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"easy", Easy, false},
		{"medium", Medium, false},
		{"hard", Hard, false},
		{"", Medium, false},
		{"extreme", "", true},
		{"Easy", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidDifficulty, "input %q", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, 2, d.DaysUntil(d.AddDays(2)))
	assert.Equal(t, -3, d.DaysUntil(d.AddDays(-3)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.True(t, d.Equal(NewDate(2024, time.February, 28)))
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	late := time.Date(2025, 6, 15, 23, 59, 0, 0, loc)
	early := time.Date(2025, 6, 15, 0, 1, 0, 0, loc)
	assert.True(t, DateOf(late).Equal(DateOf(early)))
	assert.Equal(t, "2025-06-15", DateOf(late).String())
}

func TestDateText(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2025-01-31")))
	assert.Equal(t, NewDate(2025, time.January, 31), d)

	require.NoError(t, d.UnmarshalText(nil))
	assert.True(t, d.IsZero())

	err := d.UnmarshalText([]byte("31/01/2025"))
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2025-03-04"))
	assert.Equal(t, "2025-03-04", d.String())
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	require.NoError(t, d.Scan(time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-04", d.String())
	assert.Error(t, d.Scan(42))

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReviewCardJSONRoundTripKeepsVariant(t *testing.T) {
	cards := []ReviewCard{
		{ID: "a", Question: "q", Answer: "a", Metadata: DeityRecognitionMeta{EntityID: "zeus"}},
		{ID: "b", Question: "q", Answer: "a", Metadata: DomainMatchMeta{EntityID: "zeus", Domain: "sky"}},
		{ID: "c", Question: "q", Answer: "a", Metadata: SymbolMatchMeta{EntityID: "zeus", Symbol: "thunderbolt"}},
		{ID: "d", Question: "q", Answer: "a", Metadata: PantheonMatchMeta{EntityID: "zeus", Pantheon: "Greek"}},
		{ID: "e", Question: "q", Answer: "a", Hint: "h", Metadata: StoryCharacterMeta{StoryID: "titanomachy", EntityID: "zeus"}},
	}
	for _, card := range cards {
		data, err := json.Marshal(card)
		require.NoError(t, err)

		var decoded ReviewCard
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, card, decoded)
		assert.Equal(t, card.Type(), decoded.Type())
	}
}

func TestReviewCardJSONShape(t *testing.T) {
	card := ReviewCard{ID: "x", Question: "q", Answer: "a", Metadata: PantheonMatchMeta{EntityID: "ra", Pantheon: "Egyptian"}}
	data, err := json.Marshal(card)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","type":"pantheon-match","question":"q","answer":"a","metadata":{"entityId":"ra","pantheon":"Egyptian"}}`, string(data))
}

func TestReviewCardRejectsUnknownType(t *testing.T) {
	var c ReviewCard
	err := json.Unmarshal([]byte(`{"id":"x","type":"riddle","metadata":{}}`), &c)
	assert.ErrorIs(t, err, ErrInvalidCardType)

	_, err = json.Marshal(ReviewCard{ID: "y"})
	assert.Error(t, err)
}

func TestRelationTypeSymmetric(t *testing.T) {
	assert.True(t, SiblingOf.Symmetric())
	assert.True(t, SpouseOf.Symmetric())
	assert.False(t, ParentOf.Symmetric())
	assert.False(t, ChildOf.Symmetric())
}
