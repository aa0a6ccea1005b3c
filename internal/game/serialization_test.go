package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotChecksumDeterministic(t *testing.T) {
	g := startedGame(t, scriptedOptions(1, 2), alice, bob)
	give(t, g, alice, 1, 3)
	_, err := g.ProposeTrade(alice, bob, Bundle{PropertyIDs: []int{1}}, Bundle{Cash: 5_000})
	require.NoError(t, err)
	_, err = g.ProposeTrade(bob, alice, Bundle{Cash: 9_000}, Bundle{PropertyIDs: []int{3}})
	require.NoError(t, err)

	want := g.State().Snapshot().Checksum()
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, g.State().Snapshot().Checksum())
	}
	assert.Len(t, want, 64)
}

func TestSnapshotChecksumTracksState(t *testing.T) {
	g := startedGame(t, scriptedOptions(1, 2), alice, bob)
	before := g.State().Snapshot().Checksum()

	_, err := g.RollDice(alice)
	require.NoError(t, err)
	afterRoll := g.State().Snapshot().Checksum()
	assert.NotEqual(t, before, afterRoll)

	_, err = g.BuyProperty(alice)
	require.NoError(t, err)
	assert.NotEqual(t, afterRoll, g.State().Snapshot().Checksum())
}

func TestSnapshotIsDetached(t *testing.T) {
	g := startedGame(t, scriptedOptions(1, 2), alice, bob)
	give(t, g, alice, 1)
	snap := g.State().Snapshot()

	mustPlayer(t, g, alice).Cash = 1
	g.State().Properties[1].Level = 1

	assert.Equal(t, 1_500_000, snap.Players[0].Cash)
	assert.Zero(t, snap.Properties[0].Level)
}

func TestSnapshotJSON(t *testing.T) {
	g := startedGame(t, scriptedOptions(1, 2), alice, bob)
	_, err := g.RollDice(alice)
	require.NoError(t, err)

	data, err := json.Marshal(g.State().Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "test-game", decoded["game_id"])
	assert.Equal(t, "END_TURN", decoded["phase"])
	assert.Equal(t, alice, decoded["current_player"])
	assert.Equal(t, []any{1.0, 2.0}, decoded["last_roll"])
	assert.Equal(t, 32.0, decoded["houses_left"])

	players, ok := decoded["players"].([]any)
	require.True(t, ok)
	require.Len(t, players, 2)
	first := players[0].(map[string]any)
	assert.Equal(t, "red", first["color"])
	assert.Equal(t, 3.0, first["position"])

	properties, ok := decoded["properties"].([]any)
	require.True(t, ok)
	assert.Len(t, properties, 28)
	assert.Len(t, decoded["chance_order"], 16)
}
