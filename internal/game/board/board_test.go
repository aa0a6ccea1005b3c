package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardLayout(t *testing.T) {
	for id := 0; id < Size; id++ {
		tile, ok := Get(id)
		require.True(t, ok, "tile %d", id)
		assert.Equal(t, id, tile.ID)
	}

	_, ok := Get(Size)
	assert.False(t, ok)
	_, ok = Get(-1)
	assert.False(t, ok)

	assert.Len(t, OwnableIDs(), 28)

	for _, id := range []int{2, 17, 33} {
		tile, _ := Get(id)
		assert.Equal(t, KindCommunityChest, tile.Kind)
	}
	for _, id := range []int{7, 22, 36} {
		tile, _ := Get(id)
		assert.Equal(t, KindChance, tile.Kind)
	}

	tax, _ := Get(4)
	assert.Equal(t, 200_000, tax.Tax)
	tax, _ = Get(38)
	assert.Equal(t, 100_000, tax.Tax)
}

func TestGroupMembers(t *testing.T) {
	assert.Equal(t, []int{1, 3}, GroupMembers(GroupBrown))
	assert.Equal(t, []int{11, 13, 14}, GroupMembers(GroupPink))
	assert.Equal(t, []int{37, 39}, GroupMembers(GroupDarkBlue))
	assert.Equal(t, []int{5, 15, 25, 35}, GroupMembers(GroupRailroad))
	assert.Equal(t, []int{12, 28}, GroupMembers(GroupUtility))

	members := GroupMembers(GroupBrown)
	members[0] = 99
	assert.Equal(t, []int{1, 3}, GroupMembers(GroupBrown))
}

func TestPropertyLookup(t *testing.T) {
	tile, ok := Property(39)
	require.True(t, ok)
	assert.Equal(t, "Kedokteran", tile.Name)
	assert.Equal(t, 400_000, tile.Price)
	assert.Equal(t, 50_000, tile.Rent)
	assert.Equal(t, 200_000, tile.HouseCost)
	assert.Equal(t, 200_000, tile.MortgageValue())
	assert.Equal(t, 220_000, tile.UnmortgageCost())
	assert.Equal(t, 100_000, tile.SellValue())

	_, ok = Property(0)
	assert.False(t, ok)
	_, ok = Property(30)
	assert.False(t, ok)
}

func TestBuildingCosts(t *testing.T) {
	cases := map[int]int{
		1: 50_000, 9: 50_000,
		11: 100_000, 19: 100_000,
		21: 150_000, 29: 150_000,
		31: 200_000, 39: 200_000,
	}
	for id, cost := range cases {
		tile, ok := Property(id)
		require.True(t, ok)
		assert.Equal(t, cost, tile.HouseCost, "tile %d", id)
	}
}

func TestAdvanceAndBack(t *testing.T) {
	pos, passed := Advance(38, 3)
	assert.Equal(t, 1, pos)
	assert.True(t, passed)

	pos, passed = Advance(5, 7)
	assert.Equal(t, 12, pos)
	assert.False(t, passed)

	assert.Equal(t, 39, Back(2, 3))
	assert.Equal(t, 4, Back(7, 3))
}

func TestNextOfKind(t *testing.T) {
	pos, wrapped := NextOfKind(7, KindRailroad)
	assert.Equal(t, 15, pos)
	assert.False(t, wrapped)

	pos, wrapped = NextOfKind(36, KindRailroad)
	assert.Equal(t, 5, pos)
	assert.True(t, wrapped)

	pos, wrapped = NextOfKind(5, KindRailroad)
	assert.Equal(t, 15, pos, "strictly ahead")
	assert.False(t, wrapped)

	pos, wrapped = NextOfKind(36, KindUtility)
	assert.Equal(t, 12, pos)
	assert.True(t, wrapped)

	pos, _ = NextOfKind(22, KindUtility)
	assert.Equal(t, 28, pos)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rp 200.000", FormatMoney(200_000))
	assert.Equal(t, "Rp 1.500.000", FormatMoney(1_500_000))
	assert.Equal(t, "Rp 500", FormatMoney(500))
}
