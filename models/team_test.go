package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMemberDocumentArray(t *testing.T) {
	raw := []byte(`[{"_id":"m1","name":"Anvar","role":"leader","heroes":{"bk":80,"aq":85,"gw":55,"rc":30}}]`)

	members, err := DecodeMemberDocument(raw)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "m1", members[0].ID)
	assert.Equal(t, "Anvar", members[0].Name)
	assert.Equal(t, "leader", members[0].Role)
	assert.Equal(t, 85, members[0].Heroes.AQ)
}

func TestDecodeMemberDocumentLegacyWrappers(t *testing.T) {
	wrapped := []byte(`{"members":[{"_id":"m1","name":"A"}]}`)
	members, err := DecodeMemberDocument(wrapped)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "A", members[0].Name)

	players := []byte(`{"players":[{"_id":"m2","name":"B","position":"co-leader"}]}`)
	members, err = DecodeMemberDocument(players)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "B", members[0].Name)
	assert.Equal(t, "co-leader", members[0].Role, "position should map onto role")
}

func TestDecodeMemberDocumentRolePrecedence(t *testing.T) {
	// When both keys are present role wins.
	raw := []byte(`[{"_id":"m1","name":"C","role":"elder","position":"member"}]`)
	members, err := DecodeMemberDocument(raw)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "elder", members[0].Role)
}

func TestDecodeMemberDocumentEmpty(t *testing.T) {
	members, err := DecodeMemberDocument(nil)
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.NotNil(t, members)
}

func TestDecodeMemberDocumentInvalid(t *testing.T) {
	_, err := DecodeMemberDocument([]byte(`{"count":3}`))
	require.NoError(t, err, "unknown object shape decodes to an empty roster, not an error")

	_, err = DecodeMemberDocument([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeMemberDocumentNil(t *testing.T) {
	out, err := EncodeMemberDocument(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestMatchSamePair(t *testing.T) {
	m := &Match{HomeTeamID: 3, AwayTeamID: 7}
	assert.True(t, m.SamePair(3, 7))
	assert.True(t, m.SamePair(7, 3))
	assert.False(t, m.SamePair(3, 3))
	assert.False(t, m.SamePair(3, 8))
}
