package board

import "fmt"

// Size is the number of tiles on the board.
const Size = 40

// Well-known tile positions.
const (
	StartTile       = 0
	JailTile        = 10
	FreeParkingTile = 20
	GoToJailTile    = 30
)

// MaxLevel is the building level of a hotel. Levels 1-4 are houses.
const MaxLevel = 5

// Utility rent multipliers applied to the dice sum.
const (
	UtilityMultiplierSingle = 4_000
	UtilityMultiplierBoth   = 10_000
)

// RailroadRents is indexed by the number of railroads held by the owner minus one.
var RailroadRents = [4]int{25_000, 50_000, 100_000, 200_000}

// TileKind classifies what happens when a player lands on a tile.
type TileKind int

const (
	KindStart TileKind = iota
	KindStreet
	KindRailroad
	KindUtility
	KindTax
	KindChance
	KindCommunityChest
	KindJail
	KindFreeParking
	KindGoToJail
)

var tileKindNames = map[TileKind]string{
	KindStart:          "START",
	KindStreet:         "STREET",
	KindRailroad:       "RAILROAD",
	KindUtility:        "UTILITY",
	KindTax:            "TAX",
	KindChance:         "CHANCE",
	KindCommunityChest: "COMMUNITY_CHEST",
	KindJail:           "JAIL",
	KindFreeParking:    "FREE_PARKING",
	KindGoToJail:       "GO_TO_JAIL",
}

func (k TileKind) String() string {
	if name, ok := tileKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TILE_KIND_%d", int(k))
}

// Ownable reports whether tiles of this kind can be purchased.
func (k TileKind) Ownable() bool {
	return k == KindStreet || k == KindRailroad || k == KindUtility
}

// Group is the color set (or railroad/utility set) a property belongs to.
type Group int

const (
	GroupNone Group = iota
	GroupBrown
	GroupLightBlue
	GroupPink
	GroupOrange
	GroupRed
	GroupYellow
	GroupGreen
	GroupDarkBlue
	GroupRailroad
	GroupUtility
)

var groupNames = map[Group]string{
	GroupNone:      "NONE",
	GroupBrown:     "BROWN",
	GroupLightBlue: "LIGHT_BLUE",
	GroupPink:      "PINK",
	GroupOrange:    "ORANGE",
	GroupRed:       "RED",
	GroupYellow:    "YELLOW",
	GroupGreen:     "GREEN",
	GroupDarkBlue:  "DARK_BLUE",
	GroupRailroad:  "RAILROAD",
	GroupUtility:   "UTILITY",
}

func (g Group) String() string {
	if name, ok := groupNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GROUP_%d", int(g))
}

// Tile is the static description of a board position.
type Tile struct {
	ID        int
	Name      string
	Kind      TileKind
	Group     Group
	Price     int
	Rent      int // base rent for streets and railroads
	HouseCost int
	Tax       int
}

// Ownable reports whether the tile can be purchased.
func (t Tile) Ownable() bool {
	return t.Kind.Ownable()
}

// MortgageValue is the cash granted by the bank when the property is mortgaged.
func (t Tile) MortgageValue() int {
	return t.Price / 2
}

// UnmortgageCost is the mortgage value plus a ten percent premium.
func (t Tile) UnmortgageCost() int {
	value := t.MortgageValue()
	return value + value/10
}

// SellValue is the refund for selling one building level.
func (t Tile) SellValue() int {
	return t.HouseCost / 2
}

func street(id int, name string, group Group, price, rent, houseCost int) Tile {
	return Tile{ID: id, Name: name, Kind: KindStreet, Group: group, Price: price, Rent: rent, HouseCost: houseCost}
}

func railroad(id int, name string) Tile {
	return Tile{ID: id, Name: name, Kind: KindRailroad, Group: GroupRailroad, Price: 200_000, Rent: RailroadRents[0]}
}

func utility(id int, name string) Tile {
	return Tile{ID: id, Name: name, Kind: KindUtility, Group: GroupUtility, Price: 150_000}
}

var tiles = [Size]Tile{
	{ID: 0, Name: "Wisuda (GO)", Kind: KindStart},
	street(1, "Matematika", GroupBrown, 60_000, 2_000, 50_000),
	{ID: 2, Name: "BEM", Kind: KindCommunityChest},
	street(3, "Fisika", GroupBrown, 60_000, 4_000, 50_000),
	{ID: 4, Name: "Bayar UKT", Kind: KindTax, Tax: 200_000},
	railroad(5, "Stasiun UI"),
	street(6, "Sastra Inggris", GroupLightBlue, 100_000, 6_000, 50_000),
	{ID: 7, Name: "SIAK-NG", Kind: KindChance},
	street(8, "Arkeologi", GroupLightBlue, 100_000, 6_000, 50_000),
	street(9, "Filsafat", GroupLightBlue, 120_000, 8_000, 50_000),
	{ID: 10, Name: "Skorsing", Kind: KindJail},
	street(11, "Ilmu Komunikasi", GroupPink, 140_000, 10_000, 100_000),
	utility(12, "Perpustakaan UI"),
	street(13, "Hubungan Internasional", GroupPink, 140_000, 10_000, 100_000),
	street(14, "Sosiologi", GroupPink, 160_000, 12_000, 100_000),
	railroad(15, "Bikun"),
	street(16, "Hukum Perdata", GroupOrange, 180_000, 14_000, 100_000),
	{ID: 17, Name: "BEM", Kind: KindCommunityChest},
	street(18, "Hukum Pidana", GroupOrange, 180_000, 14_000, 100_000),
	street(19, "Hukum Tata Negara", GroupOrange, 200_000, 16_000, 100_000),
	{ID: 20, Name: "Pusgiwa", Kind: KindFreeParking},
	street(21, "Akuntansi", GroupRed, 220_000, 18_000, 150_000),
	{ID: 22, Name: "SIAK-NG", Kind: KindChance},
	street(23, "Manajemen", GroupRed, 220_000, 18_000, 150_000),
	street(24, "Ilmu Ekonomi", GroupRed, 240_000, 20_000, 150_000),
	railroad(25, "Gerbang Utama"),
	street(26, "Ilmu Komputer", GroupYellow, 260_000, 22_000, 150_000),
	street(27, "Sistem Informasi", GroupYellow, 260_000, 22_000, 150_000),
	utility(28, "Danau UI"),
	street(29, "Teknologi Informasi", GroupYellow, 280_000, 24_000, 150_000),
	{ID: 30, Name: "Sanksi Akademik", Kind: KindGoToJail},
	street(31, "Teknik Sipil", GroupGreen, 300_000, 26_000, 200_000),
	street(32, "Teknik Elektro", GroupGreen, 300_000, 26_000, 200_000),
	{ID: 33, Name: "BEM", Kind: KindCommunityChest},
	street(34, "Teknik Mesin", GroupGreen, 320_000, 28_000, 200_000),
	railroad(35, "Balairung"),
	{ID: 36, Name: "SIAK-NG", Kind: KindChance},
	street(37, "Kedokteran Gigi", GroupDarkBlue, 350_000, 35_000, 200_000),
	{ID: 38, Name: "Biaya Praktikum", Kind: KindTax, Tax: 100_000},
	street(39, "Kedokteran", GroupDarkBlue, 400_000, 50_000, 200_000),
}

var (
	groupMembers = map[Group][]int{}
	ownableIDs   []int
)

func init() {
	for _, tile := range tiles {
		if !tile.Ownable() {
			continue
		}
		ownableIDs = append(ownableIDs, tile.ID)
		groupMembers[tile.Group] = append(groupMembers[tile.Group], tile.ID)
	}
}

// Get returns the tile at the given position.
func Get(id int) (Tile, bool) {
	if id < 0 || id >= Size {
		return Tile{}, false
	}
	return tiles[id], true
}

// Property returns the tile if it exists and can be owned.
func Property(id int) (Tile, bool) {
	tile, ok := Get(id)
	if !ok || !tile.Ownable() {
		return Tile{}, false
	}
	return tile, true
}

// OwnableIDs returns the ids of all purchasable tiles in board order.
func OwnableIDs() []int {
	ids := make([]int, len(ownableIDs))
	copy(ids, ownableIDs)
	return ids
}

// GroupMembers returns the tile ids belonging to a group in board order.
func GroupMembers(group Group) []int {
	members := groupMembers[group]
	ids := make([]int, len(members))
	copy(ids, members)
	return ids
}

// Advance moves steps tiles forward from position and reports whether the
// start tile was passed.
func Advance(position, steps int) (int, bool) {
	next := (position + steps) % Size
	return next, position+steps >= Size
}

// Back moves steps tiles backwards from position, wrapping below zero.
func Back(position, steps int) int {
	return ((position-steps)%Size + Size) % Size
}

// NextOfKind finds the first tile of the given kind strictly ahead of
// position. The second return value reports whether the search wrapped past
// the start tile.
func NextOfKind(position int, kind TileKind) (int, bool) {
	for step := 1; step <= Size; step++ {
		candidate := (position + step) % Size
		if tiles[candidate].Kind == kind {
			return candidate, position+step >= Size
		}
	}
	return position, false
}
