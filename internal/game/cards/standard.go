package cards

import (
	"github.com/siakng/monopoly-server-go/internal/game/board"
)

func grant(deck DeckKind, id int, title string, amount int) Card {
	return Card{ID: id, Deck: deck, Title: title, Description: "Terima " + board.FormatMoney(amount), Kind: EffectGrantCash, Value: amount, Target: NoTarget}
}

func charge(deck DeckKind, id int, title string, amount int) Card {
	return Card{ID: id, Deck: deck, Title: title, Description: "Bayar " + board.FormatMoney(amount), Kind: EffectChargeCash, Value: amount, Target: NoTarget}
}

func advance(deck DeckKind, id int, title string, target int) Card {
	tile, _ := board.Get(target)
	return Card{ID: id, Deck: deck, Title: title, Description: "Maju ke " + tile.Name, Kind: EffectAdvanceToTile, Target: target}
}

func repair(deck DeckKind, id int, title string, perHouse, perHotel int) Card {
	return Card{
		ID:          id,
		Deck:        deck,
		Title:       title,
		Description: "Bayar " + board.FormatMoney(perHouse) + "/Gedung, " + board.FormatMoney(perHotel) + "/Fakultas",
		Kind:        EffectRepairLevy,
		Value:       perHouse,
		HotelValue:  perHotel,
		Target:      NoTarget,
	}
}

func simple(deck DeckKind, id int, title, description string, kind EffectKind, value int) Card {
	return Card{ID: id, Deck: deck, Title: title, Description: description, Kind: kind, Value: value, Target: NoTarget}
}

// StandardChance returns the chance deck in its printed order.
func StandardChance() []Card {
	d := DeckChance
	return []Card{
		advance(d, 1, "IP Semester Naik!", board.StartTile),
		advance(d, 2, "Lolos SNMPTN Kedokteran", 39),
		advance(d, 3, "Pindah ke Ilmu Komputer", 26),
		advance(d, 4, "Rapat BEM", board.FreeParkingTile),
		simple(d, 5, "Naik Bikun", "Maju ke Railroad terdekat", EffectAdvanceToNearestRailroad, 0),
		simple(d, 6, "Ke Perpustakaan", "Maju ke Utility terdekat", EffectAdvanceToNearestUtility, 0),
		grant(d, 7, "Dapat Beasiswa", 150_000),
		grant(d, 8, "Menang Lomba Karya Tulis", 100_000),
		simple(d, 9, "SIAK Error", "Mundur 3 langkah", EffectMoveBack, 3),
		simple(d, 10, "Ketahuan Titip Absen", "Langsung ke Skorsing", EffectGoToJail, 0),
		repair(d, 11, "Renovasi Kosan", 25_000, 100_000),
		charge(d, 12, "Tilang Parkir Liar", 15_000),
		advance(d, 13, "Maju ke Gerbang Utama", 25),
		advance(d, 14, "Maju ke Akuntansi", 21),
		simple(d, 15, "Kartu Bebas Skorsing", "Simpan untuk keluar dari Skorsing", EffectJailRelease, 0),
		charge(d, 16, "Bayar SPP Tambahan", 50_000),
	}
}

// StandardCommunityChest returns the community chest deck in its printed order.
func StandardCommunityChest() []Card {
	d := DeckCommunityChest
	return []Card{
		grant(d, 1, "Dana Kemahasiswaan", 200_000),
		grant(d, 2, "Salah Transfer UKT", 75_000),
		grant(d, 3, "Ospek Selesai", 50_000),
		charge(d, 4, "Konsultasi ke Dokter Kampus", 50_000),
		charge(d, 5, "Iuran Makrab", 25_000),
		grant(d, 6, "Menang Lomba UI", 100_000),
		grant(d, 7, "Refund UKT", 20_000),
		simple(d, 8, "Ulang Tahun!", "Terima "+board.FormatMoney(10_000)+" dari setiap pemain", EffectCollectFromAll, 10_000),
		grant(d, 9, "Asuransi Jatuh Tempo", 100_000),
		charge(d, 10, "Bayar Jas Almamater", 50_000),
		grant(d, 11, "Hasil Jualan Makrab", 25_000),
		simple(d, 12, "Kartu Bebas Skorsing", "Simpan untuk keluar dari Skorsing", EffectJailRelease, 0),
		advance(d, 13, "Langsung ke Wisuda", board.StartTile),
		simple(d, 14, "Plagiarisme Terdeteksi", "Langsung ke Skorsing", EffectGoToJail, 0),
		grant(d, 15, "Warisan dari Senior", 100_000),
		repair(d, 16, "Perbaikan Gedung Fakultas", 40_000, 115_000),
	}
}

// NewStandardDecks builds both decks shuffled by src.
func NewStandardDecks(src Shuffler) (chance *Deck, communityChest *Deck) {
	chance = NewDeck(DeckChance, StandardChance())
	communityChest = NewDeck(DeckCommunityChest, StandardCommunityChest())
	chance.Shuffle(src)
	communityChest.Shuffle(src)
	return chance, communityChest
}
